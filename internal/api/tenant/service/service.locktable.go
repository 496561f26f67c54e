package tenantsvc

import (
	"sort"
	"sync"
)

// lockEntry là một mutex cho một tenant kèm refcount.
// refs đếm số goroutine đang giữ hoặc đang chờ mutex; entry được thu hồi
// khi refs về 0 để bảng không lớn dần theo số tenant từng xuất hiện.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// LockTable cấp phát mutex theo tên tenant một cách lazy.
// sync.Mutex của Go có starvation mode nên goroutine chờ lâu nhất
// sẽ không bị bỏ đói khi nhiều thao tác cùng tranh một tenant.
type LockTable struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

// NewLockTable tạo một lock table rỗng
func NewLockTable() *LockTable {
	return &LockTable{
		entries: make(map[string]*lockEntry),
	}
}

// Lock giữ độc quyền tenant name. Phải gọi Unlock với đúng name sau khi xong.
func (t *LockTable) Lock(name string) {
	t.mu.Lock()
	entry, exists := t.entries[name]
	if !exists {
		entry = &lockEntry{}
		t.entries[name] = entry
	}
	entry.refs++
	t.mu.Unlock()

	entry.mu.Lock()
}

// Unlock nhả độc quyền tenant name và thu hồi entry nếu không còn ai chờ
func (t *LockTable) Unlock(name string) {
	t.mu.Lock()
	entry, exists := t.entries[name]
	if !exists {
		t.mu.Unlock()
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(t.entries, name)
	}
	t.mu.Unlock()

	entry.mu.Unlock()
}

// LockPair giữ độc quyền hai tenant theo thứ tự từ điển.
// Thứ tự cố định loại trừ deadlock khi hai rename ngược chiều chạy song song.
// Trả về hàm unlock nhả cả hai theo thứ tự ngược lại.
func (t *LockTable) LockPair(a, b string) func() {
	if a == b {
		t.Lock(a)
		return func() { t.Unlock(a) }
	}

	names := []string{a, b}
	sort.Strings(names)

	t.Lock(names[0])
	t.Lock(names[1])
	return func() {
		t.Unlock(names[1])
		t.Unlock(names[0])
	}
}

// Len trả về số entry đang tồn tại trong bảng
func (t *LockTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
