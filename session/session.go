// Package session holds the state of one visitor's ordering screens and
// implements the transitions between them. Nothing here is persisted: a new
// session always starts on the order view with an empty cart.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go-restaurant-ordering/apperr"
	"go-restaurant-ordering/backend"
	"go-restaurant-ordering/diagnostics"
	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/identity"
	"go-restaurant-ordering/models"
)

// User-facing copy.
const (
	MsgSubmitFailed  = "訂單提交失敗，請檢查您的網路連線後再試一次。"
	MsgHistoryFailed = "查詢失敗，請稍後再試。"
	MsgCopied        = "訂單資訊已複製！"
	MsgCopyFailed    = "複製失敗"

	StatusInitializing = "🔄 初始化 LINE 功能中..."
	StatusLoggingIn    = "未登入 LINE，正在嘗試登入..."
	StatusOutside      = "請在 LINE App 中開啟以獲得完整功能。"
	StatusFailed       = "⚠️ LINE 功能載入失敗，但您仍可訂餐。"
)

// OrderBackend is the remote order service.
type OrderBackend interface {
	CreateOrder(ctx context.Context, requestID string, draft models.DraftOrder, lineUserID string) (*backend.CreateOrderResult, error)
	GetOrders(ctx context.Context, requestID string, q backend.HistoryQuery) ([]models.HistoryRecord, error)
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Catalog              models.Catalog
	Validator            *helpers.FormValidator
	Backend              OrderBackend
	Identity             identity.Provider
	Journal              diagnostics.Recorder
	Log                  *slog.Logger
	DeliveryFee          int64
	NotificationDuration time.Duration
	NewRequestID         func() string
}

// OrderForm is the customer's contact and pickup input.
type OrderForm struct {
	CustomerName    string `form:"customerName" json:"customerName"`
	CustomerPhone   string `form:"customerPhone" json:"customerPhone"`
	PickupTime      string `form:"pickupTime" json:"pickupTime"`
	DeliveryAddress string `form:"deliveryAddress" json:"deliveryAddress"`
	Notes           string `form:"notes" json:"notes"`
}

// HistoryState is the history screen: search inputs and the last result.
type HistoryState struct {
	Phone       string                 `json:"phone"`
	StartDate   string                 `json:"startDate"`
	EndDate     string                 `json:"endDate"`
	Records     []models.HistoryRecord `json:"records"`
	Searched    bool                   `json:"searched"`
	Failed      bool                   `json:"failed"`
	Loading     bool                   `json:"loading"`
	FieldErrors helpers.FieldErrors    `json:"fieldErrors,omitempty"`
}

// IdentityState is what the session knows about the visitor's LINE account.
type IdentityState struct {
	Profile    *identity.Profile `json:"profile,omitempty"`
	InClient   bool              `json:"inClient"`
	Status     string            `json:"status"`
	StatusType models.Severity   `json:"statusType"`
	LoginURL   string            `json:"loginUrl,omitempty"`
}

// IdentityReport is what the page's LIFF bootstrap tells us.
type IdentityReport struct {
	AccessToken string `json:"accessToken"`
	InClient    bool   `json:"inClient"`
	LoggedIn    bool   `json:"loggedIn"`
	InitError   string `json:"initError"`
}

type Session struct {
	ID   string
	deps *Deps

	mu          sync.Mutex
	view        models.View
	cart        *models.Cart
	form        OrderForm
	fieldErrors helpers.FieldErrors
	submitting  bool
	confirmed   *models.ConfirmedOrder
	history     HistoryState
	ident       IdentityState
	prefilled   bool
	lastSeen    time.Time

	notifier *Notifier
}

func New(id string, deps *Deps) *Session {
	s := &Session{
		ID:       id,
		deps:     deps,
		view:     models.ViewOrder,
		cart:     models.NewCart(deps.Catalog),
		notifier: NewNotifier(),
		ident:    IdentityState{Status: StatusInitializing, StatusType: models.SeverityInfo},
		lastSeen: time.Now(),
	}
	s.form = s.blankForm()
	return s
}

func (s *Session) blankForm() OrderForm {
	form := OrderForm{PickupTime: s.deps.Validator.DefaultPickupTime()}
	if s.ident.Profile != nil {
		form.CustomerName = s.ident.Profile.DisplayName
	}
	return form
}

func (s *Session) Notifier() *Notifier { return s.notifier }

func (s *Session) notify(message string, severity models.Severity) {
	s.notifier.Show(message, severity, s.deps.NotificationDuration)
}

type requestIDKey struct{}

// WithRequestID makes outbound calls made under ctx reuse the caller's
// request id instead of minting a new one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func (s *Session) requestID(ctx context.Context) string {
	if id, _ := ctx.Value(requestIDKey{}).(string); id != "" {
		return id
	}
	if s.deps.NewRequestID == nil {
		return ""
	}
	return s.deps.NewRequestID()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// AddItem puts one of the named dish in the cart.
func (s *Session) AddItem(name string) bool {
	s.mu.Lock()
	ok := s.view == models.ViewOrder && s.cart.Add(name)
	s.mu.Unlock()
	if ok {
		s.notify(fmt.Sprintf("已添加 %s", name), models.SeveritySuccess)
	}
	return ok
}

// ChangeQuantity adjusts a cart line; a line that reaches zero is removed.
func (s *Session) ChangeQuantity(name string, delta int) {
	s.mu.Lock()
	if s.view != models.ViewOrder {
		s.mu.Unlock()
		return
	}
	removed, _ := s.cart.ChangeQuantity(name, delta)
	s.mu.Unlock()
	if removed {
		s.notify(fmt.Sprintf("已移除 %s", name), models.SeverityWarning)
	}
}

// UpdateForm stores the form input. Editing a field clears that field's
// error; it does not re-validate.
func (s *Session) UpdateForm(form OrderForm) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if form.CustomerPhone != s.form.CustomerPhone {
		delete(s.fieldErrors, helpers.FieldPhone)
	}
	if form.PickupTime != s.form.PickupTime {
		delete(s.fieldErrors, helpers.FieldPickupTime)
	}
	s.form = form
}

func (s *Session) draftLocked() models.DraftOrder {
	return models.DraftOrder{
		CustomerName:    s.form.CustomerName,
		CustomerPhone:   s.form.CustomerPhone,
		Lines:           s.cart.Lines(),
		PickupTime:      s.form.PickupTime,
		DeliveryAddress: s.form.DeliveryAddress,
		Notes:           s.form.Notes,
	}
}

// Submit validates the draft and sends it to the backend. On success the
// session moves to the success view with the cart cleared; on any failure
// the draft is left as it was so the customer can retry.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.view != models.ViewOrder {
		s.mu.Unlock()
		return fmt.Errorf("submit from %s: %w", s.view, apperr.ErrInvalidTransition)
	}
	if s.submitting {
		s.mu.Unlock()
		return apperr.ErrBusy
	}
	draft := s.draftLocked()
	fieldErrs, err := s.deps.Validator.ValidateDraft(draft)
	s.fieldErrors = fieldErrs
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, apperr.ErrEmptyCart) {
			s.notify(helpers.MsgEmptyCart, models.SeverityError)
		}
		return err
	}
	s.submitting = true
	lineUserID := ""
	if s.ident.Profile != nil {
		lineUserID = s.ident.Profile.UserID
	}
	inClient := s.ident.InClient
	estimate := models.EstimateTotals(draft.Lines, draft.DeliveryAddress, s.deps.DeliveryFee)
	s.mu.Unlock()

	requestID := s.requestID(ctx)
	result, err := s.deps.Backend.CreateOrder(ctx, requestID, draft, lineUserID)

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		s.mu.Unlock()
		s.recordFailure(ctx, "submit_order", requestID, draft.CustomerPhone, err)
		s.notify(MsgSubmitFailed, models.SeverityError)
		return err
	}
	confirmed := models.ConfirmedOrder{
		DraftOrder:     draft,
		OrderID:        result.OrderID,
		TotalAmount:    result.TotalAmount,
		EstimatedTotal: estimate.Total,
	}
	s.confirmed = &confirmed
	s.cart.Clear()
	s.fieldErrors = nil
	s.view = models.ViewSuccess
	s.mu.Unlock()

	s.deps.Log.LogAttrs(ctx, slog.LevelInfo, "order submitted",
		slog.String("action", "submit_order"),
		slog.String("session_id", s.ID),
		slog.String("request_id", requestID),
		slog.String("order_id", confirmed.OrderID),
		slog.Int64("total_amount", confirmed.TotalAmount),
		slog.Int64("estimated_total", confirmed.EstimatedTotal),
	)

	if s.deps.Identity.Available() && inClient && lineUserID != "" {
		s.pushConfirmation(ctx, requestID, lineUserID, confirmed)
	}
	return nil
}

// pushConfirmation is best effort: the order already succeeded, so a
// failure here is only logged.
func (s *Session) pushConfirmation(ctx context.Context, requestID, userID string, order models.ConfirmedOrder) {
	text := helpers.ConfirmationMessage(order, s.deps.Validator.Location())
	if err := s.deps.Identity.SendMessages(ctx, userID, text); err != nil {
		s.deps.Log.LogAttrs(ctx, slog.LevelWarn, "confirmation push failed",
			slog.String("action", "push_confirmation"),
			slog.String("session_id", s.ID),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Session) recordFailure(ctx context.Context, action, requestID, phone string, err error) {
	s.deps.Journal.Record(ctx, diagnostics.Event{
		Action:    action,
		Kind:      apperr.Kind(err),
		SessionID: s.ID,
		RequestID: requestID,
		PhoneHash: helpers.HashPhone(phone),
		Detail:    err.Error(),
		At:        time.Now().UTC(),
	})
}

// NewOrder leaves the success view for a fresh order form.
func (s *Session) NewOrder() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != models.ViewSuccess {
		return fmt.Errorf("new order from %s: %w", s.view, apperr.ErrInvalidTransition)
	}
	s.confirmed = nil
	s.cart.Clear()
	s.form = s.blankForm()
	s.fieldErrors = nil
	s.view = models.ViewOrder
	return nil
}

// OpenHistory switches from the order view to a fresh history search.
func (s *Session) OpenHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != models.ViewOrder {
		return fmt.Errorf("history from %s: %w", s.view, apperr.ErrInvalidTransition)
	}
	start, end := s.deps.Validator.DefaultHistoryRange()
	s.history = HistoryState{StartDate: start, EndDate: end}
	s.view = models.ViewHistory
	return nil
}

// BackToOrder returns from history to the order view. The draft is kept.
func (s *Session) BackToOrder() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != models.ViewHistory {
		return fmt.Errorf("back from %s: %w", s.view, apperr.ErrInvalidTransition)
	}
	s.view = models.ViewOrder
	return nil
}

// HistorySearch is the history form input.
type HistorySearch struct {
	Phone     string `form:"customerPhone" json:"customerPhone"`
	StartDate string `form:"startDate" json:"startDate"`
	EndDate   string `form:"endDate" json:"endDate"`
}

// SearchHistory queries past orders by phone and/or the visitor's LINE id.
// Results are shown newest first.
func (s *Session) SearchHistory(ctx context.Context, in HistorySearch) error {
	s.mu.Lock()
	if s.view != models.ViewHistory {
		s.mu.Unlock()
		return fmt.Errorf("search from %s: %w", s.view, apperr.ErrInvalidTransition)
	}
	if s.history.Loading {
		s.mu.Unlock()
		return apperr.ErrBusy
	}
	s.history.Phone = in.Phone
	if in.StartDate != "" {
		s.history.StartDate = in.StartDate
	}
	if in.EndDate != "" {
		s.history.EndDate = in.EndDate
	}
	lineUserID := ""
	if s.ident.Profile != nil {
		lineUserID = s.ident.Profile.UserID
	}
	s.history.FieldErrors = s.deps.Validator.ValidateHistoryQuery(in.Phone, lineUserID != "")
	if len(s.history.FieldErrors) > 0 {
		errs := s.history.FieldErrors
		s.mu.Unlock()
		return errs
	}
	s.history.Loading = true
	s.history.Searched = true
	s.history.Failed = false
	s.history.Records = nil
	query := backend.HistoryQuery{
		CustomerPhone: in.Phone,
		LineUserID:    lineUserID,
		StartDate:     s.history.StartDate,
		EndDate:       s.history.EndDate,
	}
	s.mu.Unlock()

	requestID := s.requestID(ctx)
	records, err := s.deps.Backend.GetOrders(ctx, requestID, query)
	if err == nil {
		models.SortHistory(records, s.deps.Validator.Location())
	}

	s.mu.Lock()
	s.history.Loading = false
	if err != nil {
		s.history.Failed = true
		s.history.Records = nil
		s.mu.Unlock()
		s.recordFailure(ctx, "history_query", requestID, in.Phone, err)
		s.notify(MsgHistoryFailed, models.SeverityError)
		return err
	}
	s.history.Records = records
	s.mu.Unlock()
	return nil
}

// ApplyIdentity updates the identity status from the page's LIFF bootstrap
// report, fetching the profile when the visitor is logged in. The name
// field is prefilled from the first profile only, and only when empty.
func (s *Session) ApplyIdentity(ctx context.Context, report IdentityReport) error {
	provider := s.deps.Identity

	switch {
	case report.InitError != "":
		s.setIdentityStatus(report.InClient, StatusFailed, models.SeverityWarning, "")
		s.deps.Log.LogAttrs(ctx, slog.LevelWarn, "identity init failed",
			slog.String("action", "identity_init"),
			slog.String("session_id", s.ID),
			slog.String("error", report.InitError),
		)
		return nil
	case !provider.Available():
		s.setIdentityStatus(false, StatusOutside, models.SeverityWarning, "")
		return apperr.ErrIdentityUnavailable
	case !report.LoggedIn && report.InClient:
		s.setIdentityStatus(true, StatusLoggingIn, models.SeverityInfo, provider.LoginURL())
		return nil
	case !report.LoggedIn:
		s.setIdentityStatus(false, StatusOutside, models.SeverityWarning, "")
		return nil
	}

	profile, err := provider.Profile(ctx, report.AccessToken)
	if err != nil {
		s.setIdentityStatus(report.InClient, StatusFailed, models.SeverityWarning, "")
		s.recordFailure(ctx, "identity_profile", "", "", err)
		return err
	}

	s.mu.Lock()
	s.ident = IdentityState{
		Profile:    &profile,
		InClient:   report.InClient,
		Status:     fmt.Sprintf("👋 歡迎，%s！", profile.DisplayName),
		StatusType: models.SeveritySuccess,
	}
	if !s.prefilled {
		s.prefilled = true
		if strings.TrimSpace(s.form.CustomerName) == "" {
			s.form.CustomerName = profile.DisplayName
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Session) setIdentityStatus(inClient bool, status string, severity models.Severity, loginURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ident.InClient = inClient
	s.ident.Status = status
	s.ident.StatusType = severity
	s.ident.LoginURL = loginURL
}

// CopyResult records whether the browser managed to copy the share text.
func (s *Session) CopyResult(ctx context.Context, ok bool, detail string) {
	if ok {
		s.notify(MsgCopied, models.SeveritySuccess)
		return
	}
	s.deps.Log.LogAttrs(ctx, slog.LevelWarn, "share copy failed",
		slog.String("action", "share_copy"),
		slog.String("session_id", s.ID),
		slog.String("error", detail),
	)
	s.notify(MsgCopyFailed, models.SeverityError)
}

func (s *Session) DismissNotification() {
	s.notifier.Dismiss()
}

// Snapshot is a read-only copy of everything a view needs to render.
type Snapshot struct {
	View         models.View            `json:"view"`
	Menu         models.Catalog         `json:"menu"`
	Cart         []models.CartLine      `json:"cart"`
	Totals       models.Totals          `json:"totals"`
	Form         OrderForm              `json:"form"`
	FieldErrors  helpers.FieldErrors    `json:"fieldErrors,omitempty"`
	Submitting   bool                   `json:"submitting"`
	Confirmed    *models.ConfirmedOrder `json:"confirmed,omitempty"`
	History      HistoryState           `json:"history"`
	Identity     IdentityState          `json:"identity"`
	Notification models.Notification    `json:"notification"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		View:        s.view,
		Menu:        s.deps.Catalog,
		Cart:        s.cart.Lines(),
		Form:        s.form,
		FieldErrors: copyErrors(s.fieldErrors),
		Submitting:  s.submitting,
		History:     s.history,
		Identity:    s.ident,
	}
	snap.History.Records = append([]models.HistoryRecord(nil), s.history.Records...)
	snap.History.FieldErrors = copyErrors(s.history.FieldErrors)
	if s.confirmed != nil {
		c := *s.confirmed
		snap.Confirmed = &c
	}
	s.mu.Unlock()

	snap.Totals = models.EstimateTotals(snap.Cart, snap.Form.DeliveryAddress, s.deps.DeliveryFee)
	snap.Notification = s.notifier.Current()
	return snap
}

func copyErrors(in helpers.FieldErrors) helpers.FieldErrors {
	if len(in) == 0 {
		return nil
	}
	out := make(helpers.FieldErrors, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *Session) Close() {
	s.notifier.Close()
}
