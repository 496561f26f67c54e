// Package worker chứa các background worker của server.
package worker

import (
	"context"
	"time"

	tenantsvc "org_manager/internal/api/tenant/service"
	"org_manager/internal/logger"
)

// ReconcileWorker quét định kỳ các entry catalog bị bỏ dở ở trạng thái
// chuyển tiếp (provisioning/deleting) và đưa chúng về trạng thái ổn định.
type ReconcileWorker struct {
	lifecycle *tenantsvc.LifecycleManager
	interval  time.Duration // Khoảng thời gian giữa các lần quét
}

// NewReconcileWorker tạo mới ReconcileWorker
func NewReconcileWorker(lifecycle *tenantsvc.LifecycleManager, interval time.Duration) *ReconcileWorker {
	if interval < 10*time.Second {
		interval = 1 * time.Minute
	}
	return &ReconcileWorker{
		lifecycle: lifecycle,
		interval:  interval,
	}
}

// Start chạy worker cho tới khi ctx bị hủy
func (w *ReconcileWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()
	errLog := logger.GetErrorLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
	}).Info("🔄 [RECONCILE] Starting Reconcile Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("🔄 [RECONCILE] Reconcile Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🔄 [RECONCILE] Panic khi reconcile, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				report, err := w.lifecycle.Reconcile(ctx)
				if err != nil {
					log.WithError(err).Error("🔄 [RECONCILE] Reconcile sweep failed")
					return
				}

				if len(report.RolledBack) > 0 || len(report.Completed) > 0 {
					log.WithFields(map[string]interface{}{
						"rolledBack": report.RolledBack,
						"completed":  report.Completed,
					}).Info("🔄 [RECONCILE] Reconciled stale entries")
				}
				for _, name := range report.Inconsistent {
					errLog.WithFields(map[string]interface{}{
						"organization": name,
					}).Error("🔄 [RECONCILE] Entry vượt quá số lần reconcile, cần can thiệp thủ công")
				}
				// Không có entry stale thì không log (giảm log noise)
			}()
		}
	}
}
