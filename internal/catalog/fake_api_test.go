package catalog

import (
	"context"
	"sync"

	"shop-catalog/internal/model"
)

type updateCall struct {
	ID    int64
	Input model.ProductInput
}

// fakeAPI is an in-memory catalog backend that records every call.
type fakeAPI struct {
	mu         sync.Mutex
	products   []model.Product
	categories []model.Category
	nextID     int64

	listCalls int
	creates   []model.ProductInput
	updates   []updateCall
	deletes   []int64

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	// listFn overrides ListProducts when set. call counts from 1.
	listFn   func(ctx context.Context, call int) ([]model.Product, error)
	createFn func(ctx context.Context) error
	updateFn func(ctx context.Context) error
}

func newFakeAPI(products ...model.Product) *fakeAPI {
	api := &fakeAPI{
		categories: []model.Category{{ID: 1, Name: "Tools"}, {ID: 2, Name: "Garden"}},
		nextID:     100,
	}
	api.products = append(api.products, products...)
	return api
}

func (f *fakeAPI) ListProducts(ctx context.Context) ([]model.Product, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	fn := f.listFn
	err := f.listErr
	products := append([]model.Product(nil), f.products...)
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, call)
	}
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (f *fakeAPI) ListCategories(ctx context.Context) ([]model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Category(nil), f.categories...), nil
}

func (f *fakeAPI) CreateProduct(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	f.mu.Lock()
	f.creates = append(f.creates, in)
	fn := f.createFn
	f.mu.Unlock()

	if fn != nil {
		if err := fn(ctx); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	p := f.productFromInput(f.nextID, in)
	f.products = append(f.products, p)
	return &p, nil
}

func (f *fakeAPI) UpdateProduct(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error) {
	f.mu.Lock()
	f.updates = append(f.updates, updateCall{ID: id, Input: in})
	fn := f.updateFn
	f.mu.Unlock()

	if fn != nil {
		if err := fn(ctx); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.products {
		if f.products[i].ID == id {
			f.products[i] = f.productFromInput(id, in)
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, &notFound{}
}

func (f *fakeAPI) DeleteProduct(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.products {
		if f.products[i].ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return &notFound{}
}

func (f *fakeAPI) productFromInput(id int64, in model.ProductInput) model.Product {
	p := model.Product{ID: id, Name: in.Name, Price: in.Price, Categories: []model.Category{}}
	for _, ref := range in.Categories {
		for _, c := range f.categories {
			if c.ID == ref.ID {
				p.Categories = append(p.Categories, c)
			}
		}
	}
	return p
}

func (f *fakeAPI) set(fn func(f *fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeAPI) counts() (lists, creates, updates, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, len(f.creates), len(f.updates), len(f.deletes)
}

type notFound struct{}

func (*notFound) Error() string { return "not found" }

// noticeRecorder collects notices.
type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) All() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

func (r *noticeRecorder) Errors() []Notice {
	var out []Notice
	for _, n := range r.All() {
		if n.Level == LevelError {
			out = append(out, n)
		}
	}
	return out
}

func product(id int64, name, price string, categories ...model.Category) model.Product {
	if categories == nil {
		categories = []model.Category{}
	}
	return model.Product{ID: id, Name: name, Price: model.MustPrice(price), Categories: categories}
}

func yes() Confirmer {
	return ConfirmFunc(func(ctx context.Context, p model.Product) (bool, error) { return true, nil })
}

func no() Confirmer {
	return ConfirmFunc(func(ctx context.Context, p model.Product) (bool, error) { return false, nil })
}
