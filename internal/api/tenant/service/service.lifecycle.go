package tenantsvc

import (
	"context"
	"errors"
	"sync"
	"time"

	authmodels "org_manager/internal/api/auth/models"
	"org_manager/internal/api/tenant/models"
	"org_manager/internal/common"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DataHandle là một tham chiếu đã acquire tới collection dữ liệu của tenant
type DataHandle interface {
	Collection() *mongo.Collection
	Release()
}

// CollectionStore trừu tượng hóa storage engine ở mức collection vật lý.
// Production dùng storage.Pool (qua PoolStore); test inject fake.
type CollectionStore interface {
	// Acquire trả về handle tới collection vật lý của tenant
	Acquire(ctx context.Context, name string) (DataHandle, error)

	// CreateCollection tạo collection vật lý, idempotent
	CreateCollection(ctx context.Context, name string) error

	// DropCollection xóa collection vật lý, idempotent
	DropCollection(ctx context.Context, name string) error

	// CollectionExists kiểm tra collection vật lý có tồn tại hay không
	CollectionExists(ctx context.Context, name string) (bool, error)

	// SeedMetadata ghi document metadata khởi tạo vào collection mới của tenant
	SeedMetadata(ctx context.Context, name string) error

	// Evict loại handle của collection khỏi pool sau khi drop
	Evict(name string)
}

// AdminProvisioner là collaborator cấp phát tài khoản admin khi tổ chức
// được tạo và thu hồi khi tổ chức bị xóa
type AdminProvisioner interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*authmodels.Admin, error)
	CreateAdmin(ctx context.Context, email, password, fullName string, orgID primitive.ObjectID, orgName string) (*authmodels.Admin, error)
	PurgeByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error)
	UpdateOrganizationName(ctx context.Context, orgID primitive.ObjectID, newName string) error
}

// CreateParams là đầu vào của Create
type CreateParams struct {
	Name          string
	AdminEmail    string
	AdminPassword string
	AdminFullName string
}

// ReconcileReport tổng kết một lượt reconcile
type ReconcileReport struct {
	RolledBack   []string // entry provisioning cũ được roll back về vắng mặt
	Completed    []string // entry deleting cũ được xóa nốt
	Inconsistent []string // entry vượt quá số lần thử, cần can thiệp
}

// LifecycleManager điều phối vòng đời collection của tenant: đăng ký vào
// catalog, tạo/xóa collection vật lý, rename logic và reconcile các entry
// bỏ dở. Mọi thao tác ghi cho một tenant đều chạy dưới mutex của tenant đó
// trong LockTable; thứ tự bước được chọn sao cho crash ở bất kỳ điểm nào
// cũng không để lại collection vật lý mà catalog không biết tới.
type LifecycleManager struct {
	catalog CatalogStore
	store   CollectionStore
	admins  AdminProvisioner
	locks   *LockTable
	logger  *logrus.Logger

	grace       time.Duration // tuổi tối thiểu để một entry chuyển tiếp bị coi là stale
	maxAttempts int           // số lần reconcile tối đa cho một entry

	attemptsMu sync.Mutex
	attempts   map[string]int // số lần reconcile đã thử theo tên entry
}

// NewLifecycleManager tạo lifecycle manager với các collaborator được inject
func NewLifecycleManager(catalog CatalogStore, store CollectionStore, admins AdminProvisioner, logger *logrus.Logger, grace time.Duration, maxAttempts int) *LifecycleManager {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &LifecycleManager{
		catalog:     catalog,
		store:       store,
		admins:      admins,
		locks:       NewLockTable(),
		logger:      logger,
		grace:       grace,
		maxAttempts: maxAttempts,
		attempts:    make(map[string]int),
	}
}

// Create đăng ký tổ chức mới: entry provisioning trong catalog, collection
// vật lý, tài khoản admin, rồi chuyển entry sang active.
//
// Entry cùng tên đang provisioning được resume (các bước vật lý idempotent);
// entry đang deleting được xóa nốt trước khi tạo mới; entry active trả về
// ErrDuplicateName.
func (m *LifecycleManager) Create(ctx context.Context, params CreateParams) (*models.Organization, error) {
	if err := ValidateName(params.Name); err != nil {
		return nil, err
	}

	name := NormalizeName(params.Name)
	collName := CollectionNameFor(params.Name)

	m.locks.Lock(name)
	defer m.locks.Unlock(name)

	existing, err := m.catalog.Lookup(ctx, name)
	switch {
	case err == nil:
		switch existing.Status {
		case models.OrgStatusActive:
			return nil, common.ErrDuplicateName
		case models.OrgStatusProvisioning:
			// Resume lần provisioning bỏ dở
			return m.finishCreate(ctx, existing, params)
		case models.OrgStatusDeleting:
			// Xóa nốt rồi tạo mới từ đầu
			if err := m.finishDelete(ctx, existing); err != nil {
				return nil, err
			}
		}
	case errors.Is(err, common.ErrNotFound):
		// Tên chưa có trong catalog, tiếp tục tạo mới
	default:
		return nil, err
	}

	if m.admins != nil && params.AdminEmail != "" {
		exists, err := m.admins.EmailExists(ctx, params.AdminEmail)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, common.ErrDuplicateEmail
		}
	}

	// Catalog trước, vật lý sau: collection chỉ được tạo khi đã có entry
	// trỏ tới nó, nên không bao giờ có collection mồ côi
	entry, err := m.catalog.InsertProvisioning(ctx, name, collName)
	if err != nil {
		return nil, err
	}

	return m.finishCreate(ctx, entry, params)
}

// finishCreate chạy các bước sau khi entry provisioning đã tồn tại.
// Tất cả các bước đều idempotent nên gọi lại trên một entry resume an toàn.
func (m *LifecycleManager) finishCreate(ctx context.Context, entry *models.Organization, params CreateParams) (*models.Organization, error) {
	if err := m.store.CreateCollection(ctx, entry.CollectionName); err != nil {
		return nil, err
	}
	if err := m.store.SeedMetadata(ctx, entry.CollectionName); err != nil {
		return nil, err
	}

	adminID := entry.AdminID
	adminEmail := entry.AdminEmail
	if m.admins != nil && params.AdminEmail != "" {
		admin, err := m.admins.FindByEmail(ctx, params.AdminEmail)
		switch {
		case err == nil:
			// Email đã tồn tại: chỉ chấp nhận khi admin thuộc đúng entry này
			// (trường hợp resume sau crash giữa CreateAdmin và MarkActive)
			if admin.OrganizationID != entry.ID {
				return nil, common.ErrDuplicateEmail
			}
			adminID = admin.ID
			adminEmail = admin.Email
		case errors.Is(err, common.ErrNotFound):
			admin, err := m.admins.CreateAdmin(ctx, params.AdminEmail, params.AdminPassword, params.AdminFullName, entry.ID, entry.Name)
			if err != nil {
				return nil, err
			}
			adminID = admin.ID
			adminEmail = admin.Email
		default:
			return nil, err
		}
	}

	activated, err := m.catalog.MarkActive(ctx, entry.Name, adminID, adminEmail)
	if err != nil {
		return nil, err
	}

	m.clearAttempts(entry.Name)
	if m.logger != nil {
		m.logger.WithFields(logrus.Fields{
			"organization": activated.Name,
			"collection":   activated.CollectionName,
		}).Info("Organization created")
	}
	return activated, nil
}

// Resolve trả về handle tới collection dữ liệu của tenant active.
// Không giữ lock độc quyền và chỉ tra catalog đúng một lần: một resolve
// chồng lấn với delete có thể trả về handle của collection sắp biến mất,
// thao tác dùng handle đó sẽ nhận lỗi từ storage engine.
func (m *LifecycleManager) Resolve(ctx context.Context, name string) (DataHandle, *models.Organization, error) {
	normalized := NormalizeName(name)

	entry, err := m.catalog.Lookup(ctx, normalized)
	if err != nil {
		return nil, nil, err
	}

	if entry.IsTransitional() {
		return nil, nil, common.ErrTenantBusy
	}

	handle, err := m.store.Acquire(ctx, entry.CollectionName)
	if err != nil {
		return nil, nil, err
	}
	return handle, entry, nil
}

// Describe trả về entry catalog của tenant bất kể trạng thái, không acquire
// handle dữ liệu. Dùng cho tra cứu thông tin; truy cập dữ liệu đi qua Resolve.
func (m *LifecycleManager) Describe(ctx context.Context, name string) (*models.Organization, error) {
	return m.catalog.Lookup(ctx, NormalizeName(name))
}

// Rename đổi tên logic của tổ chức; collection vật lý giữ nguyên tên cũ.
// Giữ lock của cả hai tên theo thứ tự từ điển để rename ngược chiều không
// deadlock và để tên mới không bị create/delete xen giữa.
func (m *LifecycleManager) Rename(ctx context.Context, oldName, newName string) (*models.Organization, error) {
	if err := ValidateName(newName); err != nil {
		return nil, err
	}

	o := NormalizeName(oldName)
	n := NormalizeName(newName)

	if o == n {
		entry, err := m.catalog.Lookup(ctx, o)
		if err != nil {
			return nil, err
		}
		if entry.IsTransitional() {
			return nil, common.ErrTenantBusy
		}
		return entry, nil
	}

	unlock := m.locks.LockPair(o, n)
	defer unlock()

	updated, err := m.catalog.Rename(ctx, o, n)
	if err == nil {
		if m.admins != nil && !updated.AdminID.IsZero() {
			if aerr := m.admins.UpdateOrganizationName(ctx, updated.ID, n); aerr != nil && m.logger != nil {
				m.logger.WithError(aerr).WithField("organization", n).Warn("Failed to propagate rename to admin users")
			}
		}
		if m.logger != nil {
			m.logger.WithFields(logrus.Fields{
				"from": o,
				"to":   n,
			}).Info("Organization renamed")
		}
		return updated, nil
	}

	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	// Rename chỉ match entry active; phân biệt vắng mặt với đang chuyển tiếp
	entry, lerr := m.catalog.Lookup(ctx, o)
	if lerr != nil {
		return nil, common.ErrNotFound
	}
	if entry.IsTransitional() {
		return nil, common.ErrTenantBusy
	}
	return nil, err
}

// Delete xóa tổ chức: đánh dấu deleting, drop collection vật lý, purge
// admin, rồi xóa entry khỏi catalog. Thứ tự đánh-dấu-trước-drop-sau nghĩa là
// crash giữa chừng để lại entry deleting mà reconcile sẽ xóa nốt, không bao
// giờ để lại collection mồ côi.
func (m *LifecycleManager) Delete(ctx context.Context, name string) error {
	normalized := NormalizeName(name)

	m.locks.Lock(normalized)
	defer m.locks.Unlock(normalized)

	entry, err := m.catalog.MarkDeleting(ctx, normalized)
	if err != nil {
		return err
	}

	return m.finishDelete(ctx, entry)
}

// finishDelete chạy phần vật lý của delete cho một entry đã ở trạng thái
// deleting. Idempotent: drop tolerate NamespaceNotFound, purge catalog
// tolerate vắng mặt.
func (m *LifecycleManager) finishDelete(ctx context.Context, entry *models.Organization) error {
	if err := m.store.DropCollection(ctx, entry.CollectionName); err != nil {
		return err
	}

	if m.admins != nil && !entry.ID.IsZero() {
		if _, err := m.admins.PurgeByOrganization(ctx, entry.ID); err != nil {
			return err
		}
	}

	if err := m.catalog.MarkDeleted(ctx, entry.Name); err != nil {
		return err
	}

	m.store.Evict(entry.CollectionName)
	m.clearAttempts(entry.Name)

	if m.logger != nil {
		m.logger.WithFields(logrus.Fields{
			"organization": entry.Name,
			"collection":   entry.CollectionName,
		}).Info("Organization deleted")
	}
	return nil
}

// Reconcile quét các entry chuyển tiếp bị bỏ dở quá grace window và đưa
// chúng về trạng thái ổn định: provisioning cũ bị roll back về vắng mặt,
// deleting cũ được xóa nốt. Entry thất bại quá maxAttempts lần được báo
// cáo là inconsistent thay vì thử mãi.
func (m *LifecycleManager) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{}
	cutoff := time.Now().Add(-m.grace).UnixMilli()

	staleProvisioning, err := m.catalog.FindStale(ctx, models.OrgStatusProvisioning, cutoff)
	if err != nil {
		return nil, err
	}
	for i := range staleProvisioning {
		entry := &staleProvisioning[i]
		m.reconcileOne(ctx, entry, report)
	}

	staleDeleting, err := m.catalog.FindStale(ctx, models.OrgStatusDeleting, cutoff)
	if err != nil {
		return nil, err
	}
	for i := range staleDeleting {
		entry := &staleDeleting[i]
		m.reconcileOne(ctx, entry, report)
	}

	return report, nil
}

// reconcileOne xử lý một entry stale dưới lock của tenant đó
func (m *LifecycleManager) reconcileOne(ctx context.Context, stale *models.Organization, report *ReconcileReport) {
	m.locks.Lock(stale.Name)
	defer m.locks.Unlock(stale.Name)

	// Re-lookup dưới lock: entry có thể đã được thao tác khác xử lý xong
	entry, err := m.catalog.Lookup(ctx, stale.Name)
	if err != nil || !entry.IsTransitional() {
		m.clearAttempts(stale.Name)
		return
	}

	if m.bumpAttempts(entry.Name) > m.maxAttempts {
		report.Inconsistent = append(report.Inconsistent, entry.Name)
		if m.logger != nil {
			m.logger.WithFields(logrus.Fields{
				"organization": entry.Name,
				"status":       entry.Status,
				"maxAttempts":  m.maxAttempts,
			}).Error(common.ErrInconsistentState.Error())
		}
		return
	}

	switch entry.Status {
	case models.OrgStatusProvisioning:
		// Roll back về vắng mặt: drop collection tạo dở (nếu có), thu hồi
		// admin đã cấp phát dở, xóa entry
		if err := m.store.DropCollection(ctx, entry.CollectionName); err != nil {
			m.logReconcileFailure(entry, err)
			return
		}
		if m.admins != nil && !entry.ID.IsZero() {
			if _, err := m.admins.PurgeByOrganization(ctx, entry.ID); err != nil {
				m.logReconcileFailure(entry, err)
				return
			}
		}
		if err := m.catalog.MarkDeleted(ctx, entry.Name); err != nil {
			m.logReconcileFailure(entry, err)
			return
		}
		m.store.Evict(entry.CollectionName)
		m.clearAttempts(entry.Name)
		report.RolledBack = append(report.RolledBack, entry.Name)

	case models.OrgStatusDeleting:
		// Drive forward: xóa nốt
		if err := m.finishDelete(ctx, entry); err != nil {
			m.logReconcileFailure(entry, err)
			return
		}
		report.Completed = append(report.Completed, entry.Name)
	}
}

func (m *LifecycleManager) logReconcileFailure(entry *models.Organization, err error) {
	if m.logger != nil {
		m.logger.WithError(err).WithFields(logrus.Fields{
			"organization": entry.Name,
			"status":       entry.Status,
		}).Warn("Reconcile attempt failed, will retry next sweep")
	}
}

func (m *LifecycleManager) bumpAttempts(name string) int {
	m.attemptsMu.Lock()
	defer m.attemptsMu.Unlock()
	m.attempts[name]++
	return m.attempts[name]
}

func (m *LifecycleManager) clearAttempts(name string) {
	m.attemptsMu.Lock()
	defer m.attemptsMu.Unlock()
	delete(m.attempts, name)
}
