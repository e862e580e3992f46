// Package catalog keeps a local snapshot of the remote product catalog and
// applies create, update and delete commands against it. Every successful
// write is followed by a full re-fetch of the product collection.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shop-catalog/internal/model"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds each network call made by the store.
const DefaultTimeout = 10 * time.Second

// Errors returned by Store operations.
var (
	ErrBusy            = errors.New("another change is in progress")
	ErrNoDraft         = errors.New("no active draft")
	ErrNotConfirmed    = errors.New("deletion not confirmed")
	ErrProductNotFound = errors.New("product not found")
	ErrClosed          = errors.New("store closed")
)

// API is the subset of the catalog REST API the store needs.
type API interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateProduct(ctx context.Context, in model.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Phase is the mutation state of the store.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseRefreshing
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseRefreshing:
		return "refreshing"
	default:
		return "idle"
	}
}

// State is a point-in-time copy of the store for rendering.
type State struct {
	Products   []model.Product
	Categories []model.Category
	Draft      *Draft
	Pending    Form
	Phase      Phase
}

// Product returns the product with the given ID from the snapshot.
func (s State) Product(id int64) (model.Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithNotifier sets the receiver of user-facing notices.
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithTimeout bounds each network call. Non-positive values disable the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

// Store is the catalog synchronizer. It is safe for concurrent use. State
// is only mutated under mu and never while a request is in flight.
type Store struct {
	api      API
	notifier Notifier
	timeout  time.Duration
	logger   zerolog.Logger

	mu         sync.Mutex
	products   []model.Product
	categories []model.Category
	draft      *Draft
	pending    Form
	phase      Phase
	closed     bool

	// Fetch generations: issued on request, applied on success. Results
	// older than the applied generation are dropped.
	productsIssued    uint64
	productsApplied   uint64
	categoriesIssued  uint64
	categoriesApplied uint64
}

// New creates a store over api. The snapshot starts empty; call Load to
// populate it.
func New(api API, opts ...Option) *Store {
	s := &Store{
		api:        api,
		notifier:   NotifierFunc(func(Notice) {}),
		timeout:    DefaultTimeout,
		logger:     zerolog.Nop(),
		products:   []model.Product{},
		categories: []model.Category{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "catalog-store").Logger()
	return s
}

// Load fetches products and categories concurrently. Each collection is
// replaced independently; the first error is returned.
func (s *Store) Load(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return s.RefreshProducts(ctx) })
	g.Go(func() error { return s.RefreshCategories(ctx) })
	return g.Wait()
}

// RefreshProducts replaces the product collection with the server's. On
// failure the collection is left unchanged. The draft is not touched.
func (s *Store) RefreshProducts(ctx context.Context) error {
	if err := s.refreshProducts(ctx); err != nil {
		return s.fail("refresh products", err)
	}
	return nil
}

// RefreshCategories replaces the category vocabulary with the server's.
func (s *Store) RefreshCategories(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.categoriesIssued++
	gen := s.categoriesIssued
	s.mu.Unlock()

	callCtx, cancel := s.callContext(ctx)
	categories, err := s.api.ListCategories(callCtx)
	cancel()
	if err != nil {
		return s.fail("refresh categories", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if gen < s.categoriesApplied {
		s.logger.Debug().Uint64("generation", gen).Msg("discarding stale category list")
		return nil
	}
	s.categories = nonNil(categories)
	s.categoriesApplied = gen

	return nil
}

// refreshProducts fetches and applies the product collection without
// reporting failures.
func (s *Store) refreshProducts(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.productsIssued++
	gen := s.productsIssued
	s.mu.Unlock()

	callCtx, cancel := s.callContext(ctx)
	products, err := s.api.ListProducts(callCtx)
	cancel()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if gen < s.productsApplied {
		s.logger.Debug().Uint64("generation", gen).Msg("discarding stale product list")
		return nil
	}
	s.products = nonNil(products)
	s.productsApplied = gen

	s.logger.Debug().Int("count", len(s.products)).Msg("products refreshed")

	return nil
}

// CreateProduct validates the input and, if valid, creates the product and
// re-fetches the collection. The input is kept as the pending form until the
// create succeeds. Invalid input sends no request.
func (s *Store) CreateProduct(ctx context.Context, name, priceText string, categoryIDs []int64) (*model.Product, error) {
	form := Form{Name: name, PriceText: priceText, CategoryIDs: categoryIDs}.clone()

	s.mu.Lock()
	if err := s.checkIdleLocked(); err != nil {
		s.mu.Unlock()
		return nil, s.fail("create product", err)
	}
	s.pending = form
	in, err := form.Input()
	if err != nil {
		s.mu.Unlock()
		return nil, s.fail("create product", err)
	}
	s.phase = PhaseSubmitting
	s.mu.Unlock()

	callCtx, cancel := s.callContext(ctx)
	created, err := s.api.CreateProduct(callCtx, in)
	cancel()
	if err != nil {
		s.setPhase(PhaseIdle)
		return nil, s.fail("create product", err)
	}

	s.setPhase(PhaseRefreshing)
	refreshErr := s.refreshProducts(ctx)

	s.mu.Lock()
	// Edits made while the request was in flight survive.
	if s.pending.equal(form) {
		s.pending = Form{}
	}
	s.phase = PhaseIdle
	s.mu.Unlock()

	s.logger.Info().Int64("product_id", created.ID).Str("name", created.Name).Msg("product created")
	s.notify(LevelInfo, fmt.Sprintf("created product %q (#%d)", created.Name, created.ID))
	s.reportRefresh(refreshErr)

	return created, nil
}

// SetPending replaces the pending-create form. A form set while a create is
// in flight is kept when that create succeeds.
func (s *Store) SetPending(form Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = form.clone()
}

// Pending returns the pending-create form.
func (s *Store) Pending() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.clone()
}

// StartEdit copies the product's editable fields into the draft, replacing
// any existing draft.
func (s *Store) StartEdit(productID int64) (Draft, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Draft{}, s.fail("start edit", ErrClosed)
	}

	var (
		product model.Product
		found   bool
	)
	for _, p := range s.products {
		if p.ID == productID {
			product, found = p, true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return Draft{}, s.fail("start edit", ErrProductNotFound)
	}

	s.draft = &Draft{ProductID: productID, Form: FormFromProduct(product)}
	d := s.draftCopyLocked()
	s.mu.Unlock()

	return *d, nil
}

// UpdateDraft replaces the draft's fields. A draft changed while its save is
// in flight is kept when that save succeeds.
func (s *Store) UpdateDraft(form Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft == nil {
		return s.failLocked("update draft", ErrNoDraft)
	}
	s.draft.Form = form.clone()
	return nil
}

// CancelEdit discards the draft. Calling it without a draft is a no-op.
func (s *Store) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = nil
}

// SaveEdit validates the draft, sends it as an update and re-fetches the
// collection. The draft is discarded only after the update succeeds and only
// if it still holds the submitted fields. On any failure it is kept unchanged
// so the same payload can be retried.
func (s *Store) SaveEdit(ctx context.Context) (*model.Product, error) {
	s.mu.Lock()
	if err := s.checkIdleLocked(); err != nil {
		s.mu.Unlock()
		return nil, s.fail("save edit", err)
	}
	if s.draft == nil {
		s.mu.Unlock()
		return nil, s.fail("save edit", ErrNoDraft)
	}
	draft := s.draftCopyLocked()
	in, err := draft.Form.Input()
	if err != nil {
		s.mu.Unlock()
		return nil, s.fail("save edit", err)
	}
	s.phase = PhaseSubmitting
	s.mu.Unlock()

	callCtx, cancel := s.callContext(ctx)
	updated, err := s.api.UpdateProduct(callCtx, draft.ProductID, in)
	cancel()
	if err != nil {
		s.setPhase(PhaseIdle)
		return nil, s.fail("save edit", err)
	}

	s.setPhase(PhaseRefreshing)
	refreshErr := s.refreshProducts(ctx)

	s.mu.Lock()
	if s.draft != nil && s.draft.ProductID == draft.ProductID && s.draft.Form.equal(draft.Form) {
		s.draft = nil
	}
	s.phase = PhaseIdle
	s.mu.Unlock()

	s.logger.Info().Int64("product_id", updated.ID).Msg("product updated")
	s.notify(LevelInfo, fmt.Sprintf("saved product %q (#%d)", updated.Name, updated.ID))
	s.reportRefresh(refreshErr)

	return updated, nil
}

// DeleteProduct asks confirmer for approval and, if given, deletes the
// product and re-fetches the collection. A draft targeting the product is
// discarded once the delete succeeds, whatever the refresh outcome.
func (s *Store) DeleteProduct(ctx context.Context, productID int64, confirmer Confirmer) error {
	s.mu.Lock()
	if err := s.checkIdleLocked(); err != nil {
		s.mu.Unlock()
		return s.fail("delete product", err)
	}
	product := model.Product{ID: productID}
	for _, p := range s.products {
		if p.ID == productID {
			product = p
			break
		}
	}
	s.mu.Unlock()

	if confirmer == nil {
		return s.declined(productID)
	}
	ok, err := confirmer.Confirm(ctx, product)
	if err != nil {
		return s.fail("delete product", errors.Wrap(err, "confirm"))
	}
	if !ok {
		return s.declined(productID)
	}

	// Re-check: another command may have started while the user was deciding.
	s.mu.Lock()
	if err := s.checkIdleLocked(); err != nil {
		s.mu.Unlock()
		return s.fail("delete product", err)
	}
	s.phase = PhaseSubmitting
	s.mu.Unlock()

	callCtx, cancel := s.callContext(ctx)
	err = s.api.DeleteProduct(callCtx, productID)
	cancel()
	if err != nil {
		s.setPhase(PhaseIdle)
		return s.fail("delete product", err)
	}

	s.mu.Lock()
	if s.draft != nil && s.draft.ProductID == productID {
		s.draft = nil
	}
	s.phase = PhaseRefreshing
	s.mu.Unlock()

	refreshErr := s.refreshProducts(ctx)
	s.setPhase(PhaseIdle)

	s.logger.Info().Int64("product_id", productID).Msg("product deleted")
	s.notify(LevelInfo, fmt.Sprintf("deleted product #%d", productID))
	s.reportRefresh(refreshErr)

	return nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]model.Product, len(s.products))
	for i, p := range s.products {
		p.Categories = append([]model.Category{}, p.Categories...)
		products[i] = p
	}

	return State{
		Products:   products,
		Categories: append([]model.Category{}, s.categories...),
		Draft:      s.draftCopyLocked(),
		Pending:    s.pending.clone(),
		Phase:      s.phase,
	}
}

// Phase returns the current mutation phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Close stops the store. Results of requests still in flight are discarded
// and later operations return ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Store) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) checkIdleLocked() error {
	if s.closed {
		return ErrClosed
	}
	if s.phase != PhaseIdle {
		return ErrBusy
	}
	return nil
}

func (s *Store) setPhase(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
}

func (s *Store) draftCopyLocked() *Draft {
	if s.draft == nil {
		return nil
	}
	return &Draft{ProductID: s.draft.ProductID, Form: s.draft.Form.clone()}
}

func (s *Store) declined(productID int64) error {
	s.logger.Debug().Int64("product_id", productID).Msg("delete not confirmed")
	s.notify(LevelInfo, "deletion cancelled")
	return ErrNotConfirmed
}

// reportRefresh surfaces a failed follow-up refresh after a successful write.
func (s *Store) reportRefresh(err error) {
	if err == nil || errors.Is(err, ErrClosed) {
		return
	}
	s.logger.Warn().Err(err).Msg("refresh after write failed")
	s.notify(LevelError, "change saved, but reloading products failed: "+Describe(err))
}

// fail logs err, forwards it to the notifier and returns it unchanged.
func (s *Store) fail(op string, err error) error {
	s.logFailure(op, err)
	s.notify(LevelError, Describe(err))
	return err
}

// failLocked is fail for callers holding mu.
func (s *Store) failLocked(op string, err error) error {
	s.logFailure(op, err)
	if !s.closed {
		s.notifier.Notify(Notice{Level: LevelError, Message: Describe(err)})
	}
	return err
}

func (s *Store) logFailure(op string, err error) {
	var validationErr *ValidationError
	event := s.logger.Error()
	if errors.As(err, &validationErr) || errors.Is(err, ErrBusy) || errors.Is(err, ErrNoDraft) ||
		errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrClosed) {
		event = s.logger.Debug()
	}
	event.Err(err).Str("operation", op).Msg("catalog operation failed")
}

func (s *Store) notify(level Level, message string) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return
	}
	s.notifier.Notify(Notice{Level: level, Message: message})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
