package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/database"
)

// NewMemory builds every repository on process memory. Documents are
// round-tripped through the same BSON registry the Mongo driver uses, so
// callers never share slices with the store and money and time values look
// exactly as they would after a database read.
func NewMemory() Set {
	reg := database.Registry()
	return Set{
		Users:         &MemoryUsers{newTable(reg, func(u *models.User) *primitive.ObjectID { return &u.ID })},
		Products:      &MemoryProducts{newTable(reg, func(p *models.Product) *primitive.ObjectID { return &p.ID })},
		Categories:    &MemoryCategories{newTable(reg, func(c *models.Category) *primitive.ObjectID { return &c.ID })},
		Attributes:    &MemoryAttributes{newTable(reg, func(a *models.Attribute) *primitive.ObjectID { return &a.ID })},
		Orders:        &MemoryOrders{newTable(reg, func(o *models.Order) *primitive.ObjectID { return &o.ID })},
		PaymentEvents: &MemoryPaymentEvents{seen: make(map[string]models.PaymentEvent)},
	}
}

type table[T any] struct {
	mu   sync.RWMutex
	rows []T
	id   func(*T) *primitive.ObjectID
	reg  *bsoncodec.Registry
}

func newTable[T any](reg *bsoncodec.Registry, id func(*T) *primitive.ObjectID) *table[T] {
	return &table[T]{id: id, reg: reg}
}

func (t *table[T]) clone(v T) T {
	raw, err := bson.MarshalWithRegistry(t.reg, v)
	if err != nil {
		panic(fmt.Sprintf("repositories: memory clone: %v", err))
	}
	var out T
	if err := bson.UnmarshalWithRegistry(t.reg, raw, &out); err != nil {
		panic(fmt.Sprintf("repositories: memory clone: %v", err))
	}
	return out
}

// insert assigns an id when missing. dup reports a unique-key collision
// with an existing row.
func (t *table[T]) insert(ctx context.Context, v *T, dup func(existing, incoming *T) bool, conflict string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if dup != nil {
		for i := range t.rows {
			if dup(&t.rows[i], v) {
				return apperr.Conflict(conflict)
			}
		}
	}
	if id := t.id(v); id.IsZero() {
		*id = primitive.NewObjectID()
	}
	t.rows = append(t.rows, t.clone(*v))
	return nil
}

func (t *table[T]) first(ctx context.Context, match func(*T) bool, missing string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.rows {
		if match(&t.rows[i]) {
			v := t.clone(t.rows[i])
			return &v, nil
		}
	}
	return nil, apperr.NotFound(missing)
}

func (t *table[T]) byID(ctx context.Context, id primitive.ObjectID, missing string) (*T, error) {
	return t.first(ctx, func(v *T) bool { return *t.id(v) == id }, missing)
}

func (t *table[T]) filter(ctx context.Context, match func(*T) bool) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0)
	for i := range t.rows {
		if match == nil || match(&t.rows[i]) {
			out = append(out, t.clone(t.rows[i]))
		}
	}
	return out, nil
}

func (t *table[T]) replace(ctx context.Context, v *T, dup func(existing, incoming *T) bool, missing string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	id := *t.id(v)
	idx := -1
	for i := range t.rows {
		if *t.id(&t.rows[i]) == id {
			idx = i
		} else if dup != nil && dup(&t.rows[i], v) {
			return apperr.Conflict("Duplicate value")
		}
	}
	if idx < 0 {
		return apperr.NotFound(missing)
	}
	t.rows[idx] = t.clone(*v)
	return nil
}

// update applies fn to the row under the write lock. fn reports whether it
// changed anything.
func (t *table[T]) update(ctx context.Context, id primitive.ObjectID, fn func(*T) bool, missing string) (*T, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if *t.id(&t.rows[i]) == id {
			changed := fn(&t.rows[i])
			v := t.clone(t.rows[i])
			return &v, changed, nil
		}
	}
	return nil, false, apperr.NotFound(missing)
}

func (t *table[T]) remove(ctx context.Context, id primitive.ObjectID, missing string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if *t.id(&t.rows[i]) == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound(missing)
}

func (t *table[T]) count(ctx context.Context, match func(*T) bool) (int64, error) {
	rows, err := t.filter(ctx, match)
	return int64(len(rows)), err
}

func newer(at, bt time.Time, aid, bid primitive.ObjectID) bool {
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return aid.Hex() > bid.Hex()
}

// ---- users ----

type MemoryUsers struct{ t *table[models.User] }

func sameEmail(a, b *models.User) bool { return a.Email == b.Email }

func stripCredentials(u *models.User) {
	u.Password = ""
	u.VerificationToken = ""
	u.VerificationTokenExpires = nil
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = nil
}

func (r *MemoryUsers) Create(ctx context.Context, u *models.User) error {
	return r.t.insert(ctx, u, sameEmail, "User already exists")
}

func (r *MemoryUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.t.byID(ctx, id, userNotFound)
}

func (r *MemoryUsers) FindIdentity(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := r.t.byID(ctx, id, userNotFound)
	if err != nil {
		return nil, err
	}
	stripCredentials(u)
	return u, nil
}

func (r *MemoryUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.t.first(ctx, func(u *models.User) bool { return u.Email == email }, userNotFound)
}

func (r *MemoryUsers) FindByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return r.t.first(ctx, func(u *models.User) bool { return token != "" && u.VerificationToken == token }, userNotFound)
}

func (r *MemoryUsers) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	return r.t.first(ctx, func(u *models.User) bool { return token != "" && u.ResetPasswordToken == token }, userNotFound)
}

func (r *MemoryUsers) list(ctx context.Context, match func(*models.User) bool) ([]models.User, error) {
	users, err := r.t.filter(ctx, match)
	if err != nil {
		return nil, err
	}
	for i := range users {
		stripCredentials(&users[i])
	}
	sort.SliceStable(users, func(i, j int) bool {
		return newer(users[i].CreatedAt, users[j].CreatedAt, users[i].ID, users[j].ID)
	})
	return users, nil
}

func (r *MemoryUsers) List(ctx context.Context) ([]models.User, error) { return r.list(ctx, nil) }

func (r *MemoryUsers) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	return r.list(ctx, func(u *models.User) bool { return u.Role == role })
}

func (r *MemoryUsers) Save(ctx context.Context, u *models.User) error {
	return r.t.replace(ctx, u, sameEmail, userNotFound)
}

func (r *MemoryUsers) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.t.remove(ctx, id, userNotFound)
}

func (r *MemoryUsers) Count(ctx context.Context) (int64, error) { return r.t.count(ctx, nil) }

// ---- products ----

type MemoryProducts struct{ t *table[models.Product] }

func (r *MemoryProducts) Create(ctx context.Context, p *models.Product) error {
	return r.t.insert(ctx, p, nil, "")
}

func (r *MemoryProducts) InsertMany(ctx context.Context, ps []*models.Product) error {
	for _, p := range ps {
		if err := r.t.insert(ctx, p, nil, ""); err != nil {
			return err
		}
	}
	return nil
}

func (r *MemoryProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return r.t.byID(ctx, id, productNotFound)
}

func (r *MemoryProducts) newestFirst(ctx context.Context, match func(*models.Product) bool) ([]models.Product, error) {
	ps, err := r.t.filter(ctx, match)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ps, func(i, j int) bool {
		return newer(ps[i].CreatedAt, ps[j].CreatedAt, ps[i].ID, ps[j].ID)
	})
	return ps, nil
}

func (r *MemoryProducts) List(ctx context.Context) ([]models.Product, error) {
	return r.newestFirst(ctx, nil)
}

func (r *MemoryProducts) Save(ctx context.Context, p *models.Product) error {
	return r.t.replace(ctx, p, nil, productNotFound)
}

func (r *MemoryProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.t.remove(ctx, id, productNotFound)
}

func (r *MemoryProducts) SearchByName(ctx context.Context, term string) ([]models.Product, error) {
	term = strings.ToLower(term)
	return r.newestFirst(ctx, func(p *models.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), term)
	})
}

func (r *MemoryProducts) FindByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return r.newestFirst(ctx, func(p *models.Product) bool {
		for _, c := range p.Category {
			if strings.EqualFold(c, category) {
				return true
			}
		}
		return false
	})
}

func (r *MemoryProducts) FindByNamePrefix(ctx context.Context, prefix string) ([]models.Product, error) {
	prefix = strings.ToLower(prefix)
	return r.newestFirst(ctx, func(p *models.Product) bool {
		return strings.HasPrefix(strings.ToLower(p.Name), prefix)
	})
}

func (r *MemoryProducts) FindByExactName(ctx context.Context, name string) ([]models.Product, error) {
	ps, err := r.t.filter(ctx, func(p *models.Product) bool { return p.Name == name })
	if err != nil {
		return nil, err
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID.Hex() < ps[j].ID.Hex() })
	return ps, nil
}

func (r *MemoryProducts) CountActive(ctx context.Context) (int64, error) {
	return r.t.count(ctx, func(p *models.Product) bool { return p.IsActive })
}

func (r *MemoryProducts) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	ps, err := r.t.filter(ctx, nil)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for _, p := range ps {
		for _, c := range p.Category {
			counts[c]++
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// ---- categories ----

type MemoryCategories struct{ t *table[models.Category] }

func sameCategoryName(a, b *models.Category) bool { return a.Name == b.Name }

func (r *MemoryCategories) Create(ctx context.Context, c *models.Category) error {
	return r.t.insert(ctx, c, sameCategoryName, "Category already exists")
}

func (r *MemoryCategories) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return r.t.byID(ctx, id, categoryNotFound)
}

func (r *MemoryCategories) FindByName(ctx context.Context, name string) (*models.Category, error) {
	return r.t.first(ctx, func(c *models.Category) bool { return strings.EqualFold(c.Name, name) }, categoryNotFound)
}

func (r *MemoryCategories) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	cs, err := r.t.filter(ctx, func(c *models.Category) bool { return !activeOnly || c.IsActive })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].SortOrder != cs[j].SortOrder {
			return cs[i].SortOrder < cs[j].SortOrder
		}
		return cs[i].ID.Hex() < cs[j].ID.Hex()
	})
	return cs, nil
}

func (r *MemoryCategories) Save(ctx context.Context, c *models.Category) error {
	err := r.t.replace(ctx, c, sameCategoryName, categoryNotFound)
	if apperr.KindOf(err) == apperr.KindConflict {
		return apperr.Conflict("Category already exists")
	}
	return err
}

func (r *MemoryCategories) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.t.remove(ctx, id, categoryNotFound)
}

// ---- attributes ----

type MemoryAttributes struct{ t *table[models.Attribute] }

func (r *MemoryAttributes) Create(ctx context.Context, a *models.Attribute) error {
	return r.t.insert(ctx, a, nil, "")
}

func (r *MemoryAttributes) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Attribute, error) {
	return r.t.byID(ctx, id, attributeNotFound)
}

func (r *MemoryAttributes) sorted(ctx context.Context, match func(*models.Attribute) bool) ([]models.Attribute, error) {
	as, err := r.t.filter(ctx, match)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(as, func(i, j int) bool {
		if as[i].Name != as[j].Name {
			return as[i].Name < as[j].Name
		}
		return as[i].ID.Hex() < as[j].ID.Hex()
	})
	return as, nil
}

func (r *MemoryAttributes) List(ctx context.Context, activeOnly bool) ([]models.Attribute, error) {
	return r.sorted(ctx, func(a *models.Attribute) bool { return !activeOnly || a.IsActive })
}

func (r *MemoryAttributes) ListByType(ctx context.Context, typ string) ([]models.Attribute, error) {
	return r.sorted(ctx, func(a *models.Attribute) bool { return a.Type == typ && a.IsActive })
}

func (r *MemoryAttributes) Save(ctx context.Context, a *models.Attribute) error {
	return r.t.replace(ctx, a, nil, attributeNotFound)
}

func (r *MemoryAttributes) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.t.remove(ctx, id, attributeNotFound)
}

// ---- orders ----

type MemoryOrders struct{ t *table[models.Order] }

func (r *MemoryOrders) Create(ctx context.Context, o *models.Order) error {
	return r.t.insert(ctx, o, nil, "")
}

func (r *MemoryOrders) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return r.t.byID(ctx, id, orderNotFound)
}

func (r *MemoryOrders) newestFirst(ctx context.Context, match func(*models.Order) bool) ([]models.Order, error) {
	os, err := r.t.filter(ctx, match)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(os, func(i, j int) bool {
		return newer(os[i].CreatedAt, os[j].CreatedAt, os[i].ID, os[j].ID)
	})
	return os, nil
}

func (r *MemoryOrders) List(ctx context.Context) ([]models.Order, error) {
	return r.newestFirst(ctx, nil)
}

func (r *MemoryOrders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.newestFirst(ctx, func(o *models.Order) bool { return o.User != nil && *o.User == userID })
}

func (r *MemoryOrders) Save(ctx context.Context, o *models.Order) error {
	return r.t.replace(ctx, o, nil, orderNotFound)
}

func (r *MemoryOrders) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.t.remove(ctx, id, orderNotFound)
}

func (r *MemoryOrders) MarkPaid(ctx context.Context, id primitive.ObjectID, intentID, method string, at time.Time) (*models.Order, bool, error) {
	return r.t.update(ctx, id, func(o *models.Order) bool {
		if o.PaymentStatus == models.PaymentPaid {
			return false
		}
		o.PaymentStatus = models.PaymentPaid
		o.PaymentIntentID = intentID
		o.PaymentMethod = method
		o.UpdatedAt = at
		if o.Status == models.OrderPending {
			o.Status = models.OrderProcessing
		}
		return true
	}, orderNotFound)
}

func (r *MemoryOrders) MarkFailed(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	_, applied, err := r.t.update(ctx, id, func(o *models.Order) bool {
		if o.PaymentStatus != models.PaymentUnpaid {
			return false
		}
		o.PaymentStatus = models.PaymentFailed
		o.UpdatedAt = at
		return true
	}, orderNotFound)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return false, nil
	}
	return applied, err
}

func (r *MemoryOrders) Count(ctx context.Context) (int64, error) { return r.t.count(ctx, nil) }

func (r *MemoryOrders) MonthlyTotals(ctx context.Context, from, to time.Time) ([]MonthTotal, error) {
	os, err := r.t.filter(ctx, func(o *models.Order) bool {
		return !o.CreatedAt.Before(from) && o.CreatedAt.Before(to)
	})
	if err != nil {
		return nil, err
	}
	byMonth := make(map[int]*MonthTotal)
	for _, o := range os {
		m := int(o.CreatedAt.UTC().Month())
		mt, ok := byMonth[m]
		if !ok {
			mt = &MonthTotal{Month: m}
			byMonth[m] = mt
		}
		mt.Orders++
		mt.Sales = mt.Sales.Add(o.TotalAmount)
	}
	out := make([]MonthTotal, 0, len(byMonth))
	for _, mt := range byMonth {
		out = append(out, *mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (r *MemoryOrders) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	os, err := r.t.filter(ctx, nil)
	if err != nil {
		return nil, err
	}
	counts := make(map[models.OrderStatus]int64)
	for _, o := range os {
		counts[o.Status]++
	}
	out := make([]StatusCount, 0, len(counts))
	for s, n := range counts {
		out = append(out, StatusCount{Status: s, Count: n})
	}
	return out, nil
}

// ---- payment events ----

type MemoryPaymentEvents struct {
	mu   sync.Mutex
	seen map[string]models.PaymentEvent
}

func (r *MemoryPaymentEvents) Record(ctx context.Context, e *models.PaymentEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := e.PaymentIntentID + "|" + e.Type
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.seen[key]; dup {
		return ErrDuplicateEvent
	}
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	r.seen[key] = *e
	return nil
}

func (r *MemoryPaymentEvents) Release(ctx context.Context, intentID, typ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.seen, intentID+"|"+typ)
	r.mu.Unlock()
	return nil
}
