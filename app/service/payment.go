package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rebk-studio/ms-go-studio/app/entity"
	"github.com/rebk-studio/ms-go-studio/app/factory"
	"github.com/rebk-studio/ms-go-studio/app/mailer"
	"github.com/rebk-studio/ms-go-studio/config"
)

type orderRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
}

type orderTransactionRepository interface {
	Create(ctx context.Context, txn *entity.OrderTransaction) error
	Update(ctx context.Context, txn *entity.OrderTransaction) error
	ListByOrder(ctx context.Context, orderID uint64) ([]*entity.OrderTransaction, error)
	FindByInvoice(ctx context.Context, invoiceID string) (*entity.OrderTransaction, error)
}

type paymentNotificationRepository interface {
	Create(ctx context.Context, n *entity.PaymentNotification) error
	Update(ctx context.Context, n *entity.PaymentNotification) error
}

type activityLogRepository interface {
	Create(ctx context.Context, log *entity.ActivityLog) error
}

type userRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
}

type voucherRepository interface {
	FindByCode(ctx context.Context, code string) (*entity.Voucher, error)
	AttachUser(ctx context.Context, voucherID, userID uint64) error
}

type PaymentService struct {
	orderRepo        orderRepository
	txnRepo          orderTransactionRepository
	notificationRepo paymentNotificationRepository
	activityRepo     activityLogRepository
	userRepo         userRepository
	voucherRepo      voucherRepository

	mail    mailer.Sender
	mailCfg config.MailConfig
	logger  logrus.FieldLogger
}

func NewPaymentService(
	orderRepo orderRepository,
	txnRepo orderTransactionRepository,
	notificationRepo paymentNotificationRepository,
	activityRepo activityLogRepository,
	userRepo userRepository,
	voucherRepo voucherRepository,
	mail mailer.Sender,
	mailCfg config.MailConfig,
) *PaymentService {
	return &PaymentService{
		orderRepo:        orderRepo,
		txnRepo:          txnRepo,
		notificationRepo: notificationRepo,
		activityRepo:     activityRepo,
		userRepo:         userRepo,
		voucherRepo:      voucherRepo,
		mail:             mail,
		mailCfg:          mailCfg,
		logger:           factory.NewModuleLogger("payments-service"),
	}
}

func (s *PaymentService) logActivity(ctx context.Context, message string) {
	err := s.activityRepo.Create(ctx, &entity.ActivityLog{
		Log:       message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.WithError(err).Warn("activity log write failed")
	}
}
