package service

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/rebk-studio/ms-go-studio/app/entity"
	"github.com/rebk-studio/ms-go-studio/app/mailer"
	"github.com/rebk-studio/ms-go-studio/config"
)

type fakeOrderRepo struct {
	orders map[uint64]*entity.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uint64]*entity.Order{}}
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uint64) (*entity.Order, error) {
	item, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *entity.Order) error {
	copyItem := *order
	r.orders[order.ID] = &copyItem
	return nil
}

type fakeTxnRepo struct {
	txns      map[uint64]*entity.OrderTransaction
	nextID    uint64
	updateErr error
	listErr   error
}

func newFakeTxnRepo() *fakeTxnRepo {
	return &fakeTxnRepo{txns: map[uint64]*entity.OrderTransaction{}, nextID: 1}
}

func (r *fakeTxnRepo) Create(_ context.Context, txn *entity.OrderTransaction) error {
	id := r.nextID
	r.nextID++
	copyItem := *txn
	copyItem.ID = id
	r.txns[id] = &copyItem
	txn.ID = id
	return nil
}

func (r *fakeTxnRepo) Update(_ context.Context, txn *entity.OrderTransaction) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	copyItem := *txn
	r.txns[txn.ID] = &copyItem
	return nil
}

func (r *fakeTxnRepo) ListByOrder(_ context.Context, orderID uint64) ([]*entity.OrderTransaction, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	items := make([]*entity.OrderTransaction, 0)
	for _, item := range r.txns {
		if item.OrderID != nil && *item.OrderID == orderID {
			copyItem := *item
			items = append(items, &copyItem)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return derefString(items[i].InvoiceID) > derefString(items[j].InvoiceID)
	})
	return items, nil
}

func (r *fakeTxnRepo) FindByInvoice(_ context.Context, invoiceID string) (*entity.OrderTransaction, error) {
	for _, item := range r.txns {
		if item.InvoiceID != nil && *item.InvoiceID == invoiceID {
			copyItem := *item
			return &copyItem, nil
		}
	}
	return nil, nil
}

type fakeNotificationRepo struct {
	items  map[uint64]*entity.PaymentNotification
	nextID uint64
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{items: map[uint64]*entity.PaymentNotification{}, nextID: 1}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *entity.PaymentNotification) error {
	id := r.nextID
	r.nextID++
	copyItem := *n
	copyItem.ID = id
	r.items[id] = &copyItem
	n.ID = id
	return nil
}

func (r *fakeNotificationRepo) Update(_ context.Context, n *entity.PaymentNotification) error {
	copyItem := *n
	r.items[n.ID] = &copyItem
	return nil
}

type fakeActivityRepo struct {
	entries []string
}

func (r *fakeActivityRepo) Create(_ context.Context, log *entity.ActivityLog) error {
	r.entries = append(r.entries, log.Log)
	return nil
}

type fakeUserRepo struct {
	users map[uint64]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint64]*entity.User{}}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint64) (*entity.User, error) {
	item, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

type fakeVoucherRepo struct {
	vouchers map[string]*entity.Voucher
	attached map[uint64][]uint64
}

func newFakeVoucherRepo() *fakeVoucherRepo {
	return &fakeVoucherRepo{
		vouchers: map[string]*entity.Voucher{},
		attached: map[uint64][]uint64{},
	}
}

func (r *fakeVoucherRepo) FindByCode(_ context.Context, code string) (*entity.Voucher, error) {
	item, ok := r.vouchers[code]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

func (r *fakeVoucherRepo) AttachUser(_ context.Context, voucherID, userID uint64) error {
	r.attached[voucherID] = append(r.attached[voucherID], userID)
	return nil
}

type recordingMailer struct {
	messages []*mailer.Message
}

func (m *recordingMailer) Send(_ context.Context, msg *mailer.Message) error {
	m.messages = append(m.messages, msg)
	return nil
}

func (m *recordingMailer) withSubjectContaining(fragment string) []*mailer.Message {
	matched := make([]*mailer.Message, 0)
	for _, msg := range m.messages {
		if strings.Contains(msg.Subject, fragment) {
			matched = append(matched, msg)
		}
	}
	return matched
}

type paymentFixture struct {
	service       *PaymentService
	orders        *fakeOrderRepo
	txns          *fakeTxnRepo
	notifications *fakeNotificationRepo
	activity      *fakeActivityRepo
	users         *fakeUserRepo
	vouchers      *fakeVoucherRepo
	mail          *recordingMailer
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		orders:        newFakeOrderRepo(),
		txns:          newFakeTxnRepo(),
		notifications: newFakeNotificationRepo(),
		activity:      &fakeActivityRepo{},
		users:         newFakeUserRepo(),
		vouchers:      newFakeVoucherRepo(),
		mail:          &recordingMailer{},
	}

	f.service = NewPaymentService(
		f.orders,
		f.txns,
		f.notifications,
		f.activity,
		f.users,
		f.vouchers,
		f.mail,
		config.MailConfig{
			StudioEmail:         "studio@example.com",
			SupportEmail:        "support@example.com",
			SubjectPrefix:       "[rebk designs]",
			SendAllStudioEmails: true,
		},
	)

	return f
}

func (f *paymentFixture) addOrder(t *testing.T, id, userID uint64, paypalEmail string, paid bool) *entity.Order {
	t.Helper()
	order := &entity.Order{ID: id, UserID: userID, PaypalEmail: paypalEmail, Paid: paid}
	f.orders.orders[id] = order
	return order
}

func (f *paymentFixture) addUser(t *testing.T, id uint64, username, email string) *entity.User {
	t.Helper()
	user := &entity.User{
		ID:        id,
		Username:  username,
		FirstName: "Jo",
		LastName:  "Bloggs",
		Email:     email,
		IsStaff:   false,
	}
	f.users.users[id] = user
	return user
}

func strPtr(v string) *string {
	return &v
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}
