// Package common - Test taxonomy lỗi và convert lỗi MongoDB.
package common

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestErrorIsMatchesSentinel(t *testing.T) {
	if !errors.Is(ErrDuplicateName, ErrDuplicateName) {
		t.Error("errors.Is phải match chính sentinel")
	}

	// Hai error cùng code và message là cùng một lỗi logic
	clone := NewError(ErrCodeTenantDuplicate, "Tên tổ chức đã tồn tại", StatusConflict, nil)
	if !errors.Is(clone, ErrDuplicateName) {
		t.Error("error cùng code và message phải match sentinel qua errors.Is")
	}

	if errors.Is(ErrDuplicateName, ErrNotFound) {
		t.Error("hai sentinel khác nhau không được match")
	}
}

func TestErrorIsWrapped(t *testing.T) {
	wrapped := fmt.Errorf("insert catalog: %w", ErrDuplicateName)
	if !errors.Is(wrapped, ErrDuplicateName) {
		t.Error("errors.Is phải nhìn xuyên qua lớp wrap")
	}
}

func TestErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrDuplicateName, StatusConflict},
		{ErrNotFound, StatusNotFound},
		{ErrTenantBusy, StatusConflict},
		{ErrInconsistentState, StatusInternalServerError},
		{ErrStorageUnavailable, StatusServiceUnavailable},
		{ErrStorageTimeout, StatusGatewayTimeout},
		{ErrTokenMissing, StatusUnauthorized},
		{ErrNotOwner, StatusForbidden},
	}
	for _, tc := range cases {
		var e *Error
		if !errors.As(tc.err, &e) {
			t.Fatalf("%v không phải *Error", tc.err)
		}
		if e.StatusCode != tc.want {
			t.Errorf("%s: StatusCode = %d, muốn %d", e.Code.Code, e.StatusCode, tc.want)
		}
	}
}

func TestConvertMongoErrorNil(t *testing.T) {
	if got := ConvertMongoError(nil); got != nil {
		t.Errorf("ConvertMongoError(nil) = %v, muốn nil", got)
	}
}

func TestConvertMongoErrorNoDocuments(t *testing.T) {
	got := ConvertMongoError(mongo.ErrNoDocuments)
	if !errors.Is(got, ErrNotFound) {
		t.Errorf("ErrNoDocuments phải convert thành ErrNotFound, được %v", got)
	}
}

func TestConvertMongoErrorPassThrough(t *testing.T) {
	// Lỗi đã thuộc taxonomy đi qua nguyên vẹn, không bị convert lại
	got := ConvertMongoError(ErrTenantBusy)
	if !errors.Is(got, ErrTenantBusy) {
		t.Errorf("lỗi taxonomy phải đi qua nguyên vẹn, được %v", got)
	}
}

func TestConvertMongoErrorDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{
			{Code: 11000, Message: "E11000 duplicate key error"},
		},
	}
	got := ConvertMongoError(dup)
	if !errors.Is(got, ErrStorageDuplicate) {
		t.Errorf("duplicate key phải convert thành ErrStorageDuplicate, được %v", got)
	}
}

func TestConvertMongoErrorCommandTimeout(t *testing.T) {
	got := ConvertMongoError(mongo.CommandError{Code: 50, Message: "MaxTimeMSExpired"})
	if !errors.Is(got, ErrStorageTimeout) {
		t.Errorf("MaxTimeMSExpired phải convert thành ErrStorageTimeout, được %v", got)
	}
}

func TestConvertMongoErrorUnknown(t *testing.T) {
	got := ConvertMongoError(errors.New("lỗi lạ"))
	var e *Error
	if !errors.As(got, &e) {
		t.Fatal("lỗi không phân loại được phải wrap thành *Error")
	}
	if e.Code.Code != ErrCodeStorage.Code {
		t.Errorf("Code = %s, muốn %s", e.Code.Code, ErrCodeStorage.Code)
	}
}

func TestIsTransient(t *testing.T) {
	transient := []error{ErrStorageUnavailable, ErrStorageTimeout, ErrTenantBusy}
	for _, err := range transient {
		if !IsTransient(err) {
			t.Errorf("IsTransient(%v) = false, muốn true", err)
		}
	}

	permanent := []error{ErrDuplicateName, ErrNotFound, ErrInvalidInput, nil}
	for _, err := range permanent {
		if IsTransient(err) {
			t.Errorf("IsTransient(%v) = true, muốn false", err)
		}
	}
}
