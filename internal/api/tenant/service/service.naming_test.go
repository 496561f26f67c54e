// Package tenantsvc - Test normalize/validate tên tổ chức và sinh tên collection.
package tenantsvc

import (
	"strings"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Acme":         "acme",
		"  acme  ":     "acme",
		"Acme Corp":    "acme_corp",
		"ACME  CORP":   "acme__corp",
		"acme_corp":    "acme_corp",
		"Cong Ty ABC":  "cong_ty_abc",
	}
	for input, want := range cases {
		if got := NormalizeName(input); got != want {
			t.Errorf("NormalizeName(%q) = %q, muốn %q", input, got, want)
		}
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"acme", "Acme Corp", "a12", "ten_to_chuc", strings.Repeat("a", NameMaxLength)}
	for _, name := range valid {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) trả về lỗi: %v", name, err)
		}
	}

	invalid := []string{
		"",
		"ab",                                  // quá ngắn
		strings.Repeat("a", NameMaxLength+1),  // quá dài
		"1acme",                               // bắt đầu bằng số
		"_acme",                               // bắt đầu bằng underscore
		"acme-corp",                           // ký tự không hợp lệ
		"acme!",                               // ký tự không hợp lệ
	}
	for _, name := range invalid {
		if err := ValidateName(name); err == nil {
			t.Errorf("ValidateName(%q) phải trả về lỗi", name)
		}
	}
}

func TestCollectionNameFor(t *testing.T) {
	got := CollectionNameFor("Acme Corp")
	if got != "org_acme_corp" {
		t.Errorf("CollectionNameFor(\"Acme Corp\") = %q, muốn org_acme_corp", got)
	}

	// Deterministic: hai dạng viết của cùng một tên cho cùng một collection
	if CollectionNameFor("ACME CORP") != CollectionNameFor("acme corp") {
		t.Error("CollectionNameFor phải deterministic theo tên đã normalize")
	}

	if !strings.HasPrefix(got, CollectionPrefix) {
		t.Errorf("tên collection %q phải có prefix %q", got, CollectionPrefix)
	}
}
