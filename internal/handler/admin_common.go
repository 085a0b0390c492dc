package handler

import (
	"go.uber.org/zap"

	"github.com/estudiofit/studio-booking/internal/repository"
	"github.com/estudiofit/studio-booking/internal/schedule"
	queue_publisher "github.com/estudiofit/studio-booking/internal/service"
)

// AdminHandler bundles everything the studio staff endpoints need: slot
// and window management, session administration, member plans and fixed
// schedules, and the reconciliation and repair operations.
type AdminHandler struct {
	Slots       *repository.SlotRepo
	Windows     *repository.WindowRepo
	Sessions    *repository.SessionRepo
	Users       *repository.UserRepo
	Plans       *repository.PlanRepo
	Assignments *repository.AssignmentRepo
	Waitlist    *repository.WaitlistRepo
	Schedule    *schedule.Service
	Events      *queue_publisher.Publisher
	Log         *zap.Logger
}

// NewAdminHandler constructs an AdminHandler and panics if a required
// dependency is nil. Events may be nil when no broker is configured.
func NewAdminHandler(slots *repository.SlotRepo, windows *repository.WindowRepo, sessions *repository.SessionRepo, users *repository.UserRepo, plans *repository.PlanRepo, assignments *repository.AssignmentRepo, waitlist *repository.WaitlistRepo, svc *schedule.Service, events *queue_publisher.Publisher, log *zap.Logger) *AdminHandler {
	if slots == nil || windows == nil || sessions == nil || users == nil || plans == nil || assignments == nil || waitlist == nil || svc == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{
		Slots:       slots,
		Windows:     windows,
		Sessions:    sessions,
		Users:       users,
		Plans:       plans,
		Assignments: assignments,
		Waitlist:    waitlist,
		Schedule:    svc,
		Events:      events,
		Log:         log,
	}
}
