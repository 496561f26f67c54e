// Package tenantsvc - Test lifecycle manager với catalog/store/admin fake in-memory.
package tenantsvc

import (
	"context"
	"sync"
	"testing"
	"time"

	authmodels "org_manager/internal/api/auth/models"
	"org_manager/internal/api/tenant/models"
	"org_manager/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// fakeCatalog giữ các entry trong map, mô phỏng semantics của CatalogMongo
// (unique theo name, rename chỉ match entry active)
type fakeCatalog struct {
	mu      sync.Mutex
	entries map[string]*models.Organization
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{entries: make(map[string]*models.Organization)}
}

// seed chèn thẳng một entry với trạng thái và updatedAt cho trước
func (f *fakeCatalog) seed(name, collName, status string, updatedAt int64) *models.Organization {
	f.mu.Lock()
	defer f.mu.Unlock()
	org := &models.Organization{
		ID:             primitive.NewObjectID(),
		Name:           name,
		CollectionName: collName,
		Status:         status,
		CreatedAt:      updatedAt,
		UpdatedAt:      updatedAt,
	}
	f.entries[name] = org
	return org
}

func (f *fakeCatalog) InsertProvisioning(ctx context.Context, name string, collectionName string) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.entries[name]; exists {
		return nil, common.ErrDuplicateName
	}
	now := time.Now().UnixMilli()
	org := &models.Organization{
		ID:             primitive.NewObjectID(),
		Name:           name,
		CollectionName: collectionName,
		Status:         models.OrgStatusProvisioning,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.entries[name] = org
	copied := *org
	return &copied, nil
}

func (f *fakeCatalog) MarkActive(ctx context.Context, name string, adminID primitive.ObjectID, adminEmail string) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, exists := f.entries[name]
	if !exists || org.Status != models.OrgStatusProvisioning {
		return nil, common.ErrNotFound
	}
	org.Status = models.OrgStatusActive
	if !adminID.IsZero() {
		org.AdminID = adminID
	}
	if adminEmail != "" {
		org.AdminEmail = adminEmail
	}
	org.UpdatedAt = time.Now().UnixMilli()
	copied := *org
	return &copied, nil
}

func (f *fakeCatalog) MarkDeleting(ctx context.Context, name string) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, exists := f.entries[name]
	if !exists {
		return nil, common.ErrNotFound
	}
	org.Status = models.OrgStatusDeleting
	org.UpdatedAt = time.Now().UnixMilli()
	copied := *org
	return &copied, nil
}

func (f *fakeCatalog) MarkDeleted(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, name)
	return nil
}

func (f *fakeCatalog) Lookup(ctx context.Context, name string) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, exists := f.entries[name]
	if !exists {
		return nil, common.ErrNotFound
	}
	copied := *org
	return &copied, nil
}

func (f *fakeCatalog) Rename(ctx context.Context, oldName, newName string) (*models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, exists := f.entries[oldName]
	if !exists || org.Status != models.OrgStatusActive {
		return nil, common.ErrNotFound
	}
	if _, taken := f.entries[newName]; taken {
		return nil, common.ErrDuplicateName
	}
	delete(f.entries, oldName)
	org.Name = newName
	org.UpdatedAt = time.Now().UnixMilli()
	f.entries[newName] = org
	copied := *org
	return &copied, nil
}

func (f *fakeCatalog) FindStale(ctx context.Context, status string, olderThan int64) ([]models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Organization
	for _, org := range f.entries {
		if org.Status == status && org.UpdatedAt < olderThan {
			result = append(result, *org)
		}
	}
	return result, nil
}

// fakeHandle là DataHandle trả về từ fakeStore
type fakeHandle struct {
	name string
}

func (h *fakeHandle) Collection() *mongo.Collection { return nil }
func (h *fakeHandle) Release()                      {}

// fakeStore mô phỏng storage engine: set các collection vật lý đang tồn tại.
// dropErr cho phép inject lỗi drop để test reconcile bị kẹt.
type fakeStore struct {
	mu          sync.Mutex
	collections map[string]bool
	seeded      map[string]bool
	evicted     []string
	createErr   error
	dropErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		collections: make(map[string]bool),
		seeded:      make(map[string]bool),
	}
}

func (s *fakeStore) Acquire(ctx context.Context, name string) (DataHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &fakeHandle{name: name}, nil
}

func (s *fakeStore) CreateCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.collections[name] = true
	return nil
}

func (s *fakeStore) DropCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dropErr != nil {
		return s.dropErr
	}
	delete(s.collections, name)
	delete(s.seeded, name)
	return nil
}

func (s *fakeStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collections[name], nil
}

func (s *fakeStore) SeedMetadata(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeded[name] = true
	return nil
}

func (s *fakeStore) Evict(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evicted = append(s.evicted, name)
}

func (s *fakeStore) exists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collections[name]
}

// fakeAdmins mô phỏng admin provisioner theo email
type fakeAdmins struct {
	mu     sync.Mutex
	admins map[string]*authmodels.Admin
}

func newFakeAdmins() *fakeAdmins {
	return &fakeAdmins{admins: make(map[string]*authmodels.Admin)}
}

func (a *fakeAdmins) EmailExists(ctx context.Context, email string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, exists := a.admins[email]
	return exists, nil
}

func (a *fakeAdmins) FindByEmail(ctx context.Context, email string) (*authmodels.Admin, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	admin, exists := a.admins[email]
	if !exists {
		return nil, common.ErrNotFound
	}
	copied := *admin
	return &copied, nil
}

func (a *fakeAdmins) CreateAdmin(ctx context.Context, email, password, fullName string, orgID primitive.ObjectID, orgName string) (*authmodels.Admin, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.admins[email]; exists {
		return nil, common.ErrDuplicateEmail
	}
	admin := &authmodels.Admin{
		ID:               primitive.NewObjectID(),
		Email:            email,
		FullName:         fullName,
		OrganizationID:   orgID,
		OrganizationName: orgName,
		Role:             authmodels.AdminRoleOwner,
		IsActive:         true,
	}
	a.admins[email] = admin
	return admin, nil
}

func (a *fakeAdmins) PurgeByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var purged int64
	for email, admin := range a.admins {
		if admin.OrganizationID == orgID {
			delete(a.admins, email)
			purged++
		}
	}
	return purged, nil
}

func (a *fakeAdmins) UpdateOrganizationName(ctx context.Context, orgID primitive.ObjectID, newName string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, admin := range a.admins {
		if admin.OrganizationID == orgID {
			admin.OrganizationName = newName
		}
	}
	return nil
}

func (a *fakeAdmins) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.admins)
}

type testEnv struct {
	catalog *fakeCatalog
	store   *fakeStore
	admins  *fakeAdmins
	mgr     *LifecycleManager
}

func newTestEnv(grace time.Duration, maxAttempts int) *testEnv {
	catalog := newFakeCatalog()
	store := newFakeStore()
	admins := newFakeAdmins()
	return &testEnv{
		catalog: catalog,
		store:   store,
		admins:  admins,
		mgr:     NewLifecycleManager(catalog, store, admins, nil, grace, maxAttempts),
	}
}

func defaultParams(name string) CreateParams {
	return CreateParams{
		Name:          name,
		AdminEmail:    name + "@example.com",
		AdminPassword: "Matkhau123",
		AdminFullName: "Admin " + name,
	}
}

func TestCreateThenResolve(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	org, err := env.mgr.Create(ctx, defaultParams("acme"))
	require.NoError(t, err)
	require.Equal(t, models.OrgStatusActive, org.Status)
	require.Equal(t, "org_acme", org.CollectionName)
	require.False(t, org.AdminID.IsZero(), "entry active phải có adminId")
	assert.True(t, env.store.exists("org_acme"), "collection vật lý phải tồn tại sau create")

	handle, entry, err := env.mgr.Resolve(ctx, "acme")
	require.NoError(t, err)
	require.NotNil(t, handle)
	assert.Equal(t, "org_acme", entry.CollectionName)
	handle.Release()
}

func TestCreateNormalizesName(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	org, err := env.mgr.Create(ctx, defaultParams("  Acme Corp  "))
	require.NoError(t, err)
	assert.Equal(t, "acme_corp", org.Name)
	assert.Equal(t, "org_acme_corp", org.CollectionName)

	// Tên chỉ khác hoa thường là cùng một tenant
	_, err = env.mgr.Create(ctx, CreateParams{Name: "ACME CORP", AdminEmail: "other@example.com", AdminPassword: "Matkhau123"})
	assert.ErrorIs(t, err, common.ErrDuplicateName)
}

func TestCreateDuplicateName(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	_, err := env.mgr.Create(ctx, defaultParams("acme"))
	require.NoError(t, err)

	_, err = env.mgr.Create(ctx, CreateParams{Name: "acme", AdminEmail: "khac@example.com", AdminPassword: "Matkhau123"})
	assert.ErrorIs(t, err, common.ErrDuplicateName)
}

func TestCreateDuplicateEmail(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	_, err := env.mgr.Create(ctx, defaultParams("acme"))
	require.NoError(t, err)

	_, err = env.mgr.Create(ctx, CreateParams{Name: "globex", AdminEmail: "acme@example.com", AdminPassword: "Matkhau123"})
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)

	// Create thất bại không để lại entry hay collection
	_, err = env.catalog.Lookup(ctx, "globex")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.False(t, env.store.exists("org_globex"))
}

func TestCreateInvalidName(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	cases := []string{"ab", "1acme", "acme-corp", ""}
	for _, name := range cases {
		_, err := env.mgr.Create(ctx, CreateParams{Name: name, AdminEmail: "a@example.com", AdminPassword: "Matkhau123"})
		assert.Error(t, err, "tên %q phải bị từ chối", name)
	}
}

func TestCreateResumesProvisioning(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	// Mô phỏng một create bỏ dở: entry provisioning đã có, collection chưa tạo
	env.catalog.seed("acme", "org_acme", models.OrgStatusProvisioning, time.Now().UnixMilli())

	org, err := env.mgr.Create(ctx, defaultParams("acme"))
	require.NoError(t, err)
	assert.Equal(t, models.OrgStatusActive, org.Status)
	assert.True(t, env.store.exists("org_acme"), "resume phải tạo nốt collection vật lý")
	assert.True(t, env.store.seeded["org_acme"], "resume phải seed metadata")
}

func TestCreateResumeReusesExistingAdmin(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	// Mô phỏng crash giữa CreateAdmin và MarkActive: entry provisioning còn
	// đó, admin đã được insert cho entry này
	entry := env.catalog.seed("acme", "org_acme", models.OrgStatusProvisioning, time.Now().UnixMilli())
	existing := &authmodels.Admin{
		ID:             primitive.NewObjectID(),
		Email:          "acme@example.com",
		OrganizationID: entry.ID,
	}
	env.admins.admins[existing.Email] = existing

	org, err := env.mgr.Create(ctx, defaultParams("acme"))
	require.NoError(t, err)
	assert.Equal(t, models.OrgStatusActive, org.Status)
	assert.Equal(t, existing.ID, org.AdminID, "resume phải gắn lại adminId của admin đã tạo trước crash")
	assert.Equal(t, existing.Email, org.AdminEmail)
	assert.Equal(t, 1, env.admins.count(), "resume không được tạo thêm admin")
}

func TestCreateResumeRejectsForeignAdminEmail(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	// Email đã thuộc về một tổ chức khác thì resume không được chiếm dụng
	env.catalog.seed("acme", "org_acme", models.OrgStatusProvisioning, time.Now().UnixMilli())
	env.admins.admins["acme@example.com"] = &authmodels.Admin{
		ID:             primitive.NewObjectID(),
		Email:          "acme@example.com",
		OrganizationID: primitive.NewObjectID(),
	}

	_, err := env.mgr.Create(ctx, defaultParams("acme"))
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestCreateOverDeletingCompletesDelete(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	// Mô phỏng một delete bỏ dở: entry deleting, collection vật lý còn đó
	old := env.catalog.seed("acme", "org_acme", models.OrgStatusDeleting, time.Now().UnixMilli())
	env.store.collections["org_acme"] = true
	env.admins.admins["cu@example.com"] = &authmodels.Admin{
		ID:             primitive.NewObjectID(),
		Email:          "cu@example.com",
		OrganizationID: old.ID,
	}

	org, err := env.mgr.Create(ctx, defaultParams("acme"))
	require.NoError(t, err)
	assert.Equal(t, models.OrgStatusActive, org.Status)
	assert.NotEqual(t, old.ID, org.ID, "entry mới phải là entry khác entry cũ")

	// Admin của tổ chức cũ phải bị purge, chỉ còn admin mới
	assert.Equal(t, 1, env.admins.count())
	_, exists := env.admins.admins["acme@example.com"]
	assert.True(t, exists)
}

func TestCreateFailureLeavesNoOrphanCollection(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	env.store.createErr = common.ErrStorageUnavailable
	_, err := env.mgr.Create(ctx, defaultParams("acme"))
	require.Error(t, err)

	// Catalog entry provisioning còn đó (reconcile sẽ dọn), nhưng không có
	// collection vật lý nào nằm ngoài catalog
	entry, err := env.catalog.Lookup(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, models.OrgStatusProvisioning, entry.Status)
	assert.False(t, env.store.exists("org_acme"))
}

func TestResolveTransitional(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	env.catalog.seed("dangtao", "org_dangtao", models.OrgStatusProvisioning, time.Now().UnixMilli())
	env.catalog.seed("dangxoa", "org_dangxoa", models.OrgStatusDeleting, time.Now().UnixMilli())

	_, _, err := env.mgr.Resolve(ctx, "dangtao")
	assert.ErrorIs(t, err, common.ErrTenantBusy)

	_, _, err = env.mgr.Resolve(ctx, "dangxoa")
	assert.ErrorIs(t, err, common.ErrTenantBusy)
}

func TestResolveUnknown(t *testing.T) {
	env := newTestEnv(time.Minute, 5)

	_, _, err := env.mgr.Resolve(context.Background(), "khongton tai")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteRemovesEverything(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	_, err := env.mgr.Create(ctx, defaultParams("acme"))
	require.NoError(t, err)

	err = env.mgr.Delete(ctx, "acme")
	require.NoError(t, err)

	_, _, err = env.mgr.Resolve(ctx, "acme")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.False(t, env.store.exists("org_acme"), "collection vật lý phải bị drop")
	assert.Equal(t, 0, env.admins.count(), "admin của tổ chức phải bị purge")
	assert.Contains(t, env.store.evicted, "org_acme", "handle phải bị evict khỏi pool")

	// Tên được tái sử dụng sau khi xóa
	_, err = env.mgr.Create(ctx, defaultParams("acme"))
	assert.NoError(t, err)
}

func TestDeleteUnknown(t *testing.T) {
	env := newTestEnv(time.Minute, 5)

	err := env.mgr.Delete(context.Background(), "khongtontai")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRenameCatalogOnly(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	created, err := env.mgr.Create(ctx, defaultParams("acme"))
	require.NoError(t, err)

	renamed, err := env.mgr.Rename(ctx, "acme", "globex")
	require.NoError(t, err)
	assert.Equal(t, "globex", renamed.Name)
	assert.Equal(t, created.CollectionName, renamed.CollectionName, "rename không được đổi collection vật lý")

	// Tên cũ không còn resolve được, tên mới trỏ về đúng collection cũ
	_, _, err = env.mgr.Resolve(ctx, "acme")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, entry, err := env.mgr.Resolve(ctx, "globex")
	require.NoError(t, err)
	assert.Equal(t, "org_acme", entry.CollectionName)

	// Tên mới được propagate sang admin
	admin := env.admins.admins["acme@example.com"]
	require.NotNil(t, admin)
	assert.Equal(t, "globex", admin.OrganizationName)
}

func TestRenameToExistingName(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	_, err := env.mgr.Create(ctx, defaultParams("acme"))
	require.NoError(t, err)
	_, err = env.mgr.Create(ctx, defaultParams("globex"))
	require.NoError(t, err)

	_, err = env.mgr.Rename(ctx, "acme", "globex")
	assert.ErrorIs(t, err, common.ErrDuplicateName)
}

func TestRenameTransitional(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	env.catalog.seed("acme", "org_acme", models.OrgStatusProvisioning, time.Now().UnixMilli())

	_, err := env.mgr.Rename(ctx, "acme", "globex")
	assert.ErrorIs(t, err, common.ErrTenantBusy)
}

func TestRenameUnknown(t *testing.T) {
	env := newTestEnv(time.Minute, 5)

	_, err := env.mgr.Rename(context.Background(), "khongtontai", "globex")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRenameSameName(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	_, err := env.mgr.Create(ctx, defaultParams("acme"))
	require.NoError(t, err)

	org, err := env.mgr.Rename(ctx, "acme", "ACME")
	require.NoError(t, err)
	assert.Equal(t, "acme", org.Name)
}

func TestReconcileRollsBackStaleProvisioning(t *testing.T) {
	env := newTestEnv(time.Second, 5)
	ctx := context.Background()

	// Entry provisioning cũ hơn grace window, collection tạo dở
	stale := time.Now().Add(-time.Minute).UnixMilli()
	env.catalog.seed("acme", "org_acme", models.OrgStatusProvisioning, stale)
	env.store.collections["org_acme"] = true

	report, err := env.mgr.Reconcile(ctx)
	require.NoError(t, err)
	assert.Contains(t, report.RolledBack, "acme")

	_, err = env.catalog.Lookup(ctx, "acme")
	assert.ErrorIs(t, err, common.ErrNotFound, "entry provisioning stale phải bị roll back về vắng mặt")
	assert.False(t, env.store.exists("org_acme"), "collection tạo dở phải bị drop")
}

func TestReconcileRollbackPurgesOrphanAdmins(t *testing.T) {
	env := newTestEnv(time.Second, 5)
	ctx := context.Background()

	// Create chết giữa chừng: entry provisioning stale, collection và admin
	// đã kịp tạo nhưng entry chưa active
	stale := time.Now().Add(-time.Minute).UnixMilli()
	orphan := env.catalog.seed("acme", "org_acme", models.OrgStatusProvisioning, stale)
	env.store.collections["org_acme"] = true
	_, err := env.admins.CreateAdmin(ctx, "acme@example.com", "Matkhau123", "Admin acme", orphan.ID, "acme")
	require.NoError(t, err)

	report, err := env.mgr.Reconcile(ctx)
	require.NoError(t, err)
	assert.Contains(t, report.RolledBack, "acme")
	assert.Equal(t, 0, env.admins.count(), "roll back phải thu hồi admin cấp phát dở")

	// Roll back xong thì tên và email dùng lại được như chưa từng tạo
	org, err := env.mgr.Create(ctx, defaultParams("acme"))
	require.NoError(t, err)
	assert.Equal(t, models.OrgStatusActive, org.Status)
}

func TestReconcileCompletesStaleDeleting(t *testing.T) {
	env := newTestEnv(time.Second, 5)
	ctx := context.Background()

	stale := time.Now().Add(-time.Minute).UnixMilli()
	env.catalog.seed("acme", "org_acme", models.OrgStatusDeleting, stale)
	env.store.collections["org_acme"] = true

	report, err := env.mgr.Reconcile(ctx)
	require.NoError(t, err)
	assert.Contains(t, report.Completed, "acme")

	_, err = env.catalog.Lookup(ctx, "acme")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.False(t, env.store.exists("org_acme"))
}

func TestReconcileSkipsFreshEntries(t *testing.T) {
	env := newTestEnv(time.Hour, 5)
	ctx := context.Background()

	// Entry chuyển tiếp còn trong grace window không bị đụng tới
	env.catalog.seed("acme", "org_acme", models.OrgStatusProvisioning, time.Now().UnixMilli())

	report, err := env.mgr.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.RolledBack)
	assert.Empty(t, report.Completed)

	entry, err := env.catalog.Lookup(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, models.OrgStatusProvisioning, entry.Status)
}

func TestReconcileBoundedAttempts(t *testing.T) {
	env := newTestEnv(time.Second, 2)
	ctx := context.Background()

	stale := time.Now().Add(-time.Minute).UnixMilli()
	env.catalog.seed("acme", "org_acme", models.OrgStatusDeleting, stale)
	env.store.collections["org_acme"] = true
	env.store.dropErr = common.ErrStorageUnavailable

	// Hai lần đầu thất bại nhưng vẫn trong ngưỡng thử
	for i := 0; i < 2; i++ {
		report, err := env.mgr.Reconcile(ctx)
		require.NoError(t, err)
		assert.Empty(t, report.Inconsistent, "lần %d chưa được báo inconsistent", i+1)
	}

	// Lần thứ ba vượt maxAttempts, entry được báo cáo thay vì thử mãi
	report, err := env.mgr.Reconcile(ctx)
	require.NoError(t, err)
	assert.Contains(t, report.Inconsistent, "acme")

	// Sau khi storage hồi phục, reconcile xóa nốt được
	env.store.dropErr = nil
	env.mgr.clearAttempts("acme")
	report, err = env.mgr.Reconcile(ctx)
	require.NoError(t, err)
	assert.Contains(t, report.Completed, "acme")
}

func TestConcurrentCreateSameName(t *testing.T) {
	env := newTestEnv(time.Minute, 5)
	ctx := context.Background()

	const workers = 8
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := env.mgr.Create(ctx, CreateParams{Name: "acme"})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var succeeded, duplicated int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			require.ErrorIs(t, err, common.ErrDuplicateName)
			duplicated++
		}
	}
	assert.Equal(t, 1, succeeded, "chỉ đúng một create được thắng")
	assert.Equal(t, workers-1, duplicated)
}
