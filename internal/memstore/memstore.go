// Package memstore is an in-process implementation of service.Store. Each
// unit of work runs against a copy of the data under a single lock and the
// copy replaces the live data only when the work succeeds.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"leafloop/internal/models"
	"leafloop/internal/service"
)

type Store struct {
	mu   sync.Mutex
	data *state
}

type state struct {
	users        map[int64]models.User
	items        map[int64]models.Item
	transactions map[int64]models.Transaction
	ratings      map[int64]models.Rating
	lastID       map[string]int64
}

func New() *Store {
	return &Store{data: &state{
		users:        map[int64]models.User{},
		items:        map[int64]models.Item{},
		transactions: map[int64]models.Transaction{},
		ratings:      map[int64]models.Rating{},
		lastID:       map[string]int64{},
	}}
}

var _ service.Store = (*Store)(nil)

func (s *Store) WithTx(ctx context.Context, fn func(service.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&repositories{st: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (st *state) clone() *state {
	c := &state{
		users:        make(map[int64]models.User, len(st.users)),
		items:        make(map[int64]models.Item, len(st.items)),
		transactions: make(map[int64]models.Transaction, len(st.transactions)),
		ratings:      make(map[int64]models.Rating, len(st.ratings)),
		lastID:       make(map[string]int64, len(st.lastID)),
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.items {
		c.items[k] = v
	}
	for k, v := range st.transactions {
		c.transactions[k] = v
	}
	for k, v := range st.ratings {
		c.ratings[k] = v
	}
	for k, v := range st.lastID {
		c.lastID[k] = v
	}
	return c
}

// assignID keeps a caller supplied id, which lets tests seed fixed ids, and
// otherwise hands out the next one for the table.
func (st *state) assignID(table string, id int64) int64 {
	if id == 0 {
		id = st.lastID[table] + 1
	}
	if id > st.lastID[table] {
		st.lastID[table] = id
	}
	return id
}

type repositories struct {
	st *state
}

func (r *repositories) Users() service.UserRepository               { return userRepo{r.st} }
func (r *repositories) Items() service.ItemRepository               { return itemRepo{r.st} }
func (r *repositories) Transactions() service.TransactionRepository { return transactionRepo{r.st} }
func (r *repositories) Ratings() service.RatingRepository           { return ratingRepo{r.st} }

type userRepo struct{ st *state }

func (r userRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range r.st.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("user email %s: %w", user.Email, service.ErrConflict)
		}
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.ID = r.st.assignID("users", user.ID)
	r.st.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, service.ErrNotFound
}

func (r userRepo) AddEcoScore(_ context.Context, id int64, delta int) error {
	u, ok := r.st.users[id]
	if !ok {
		return service.ErrNotFound
	}
	u.EcoScore += delta
	r.st.users[id] = u
	return nil
}

func (r userRepo) TopByEcoScore(_ context.Context, limit int) ([]models.User, error) {
	users := make([]models.User, 0, len(r.st.users))
	for _, u := range r.st.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].EcoScore != users[j].EcoScore {
			return users[i].EcoScore > users[j].EcoScore
		}
		return users[i].ID < users[j].ID
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

type itemRepo struct{ st *state }

func (r itemRepo) Create(_ context.Context, item *models.Item) error {
	item.ID = r.st.assignID("items", item.ID)
	r.st.items[item.ID] = *item
	return nil
}

func (r itemRepo) GetByID(_ context.Context, id int64) (*models.Item, error) {
	it, ok := r.st.items[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &it, nil
}

func (r itemRepo) GetForUpdate(ctx context.Context, id int64) (*models.Item, error) {
	return r.GetByID(ctx, id)
}

func (r itemRepo) List(_ context.Context, filter models.ItemFilter) ([]models.Item, error) {
	items := make([]models.Item, 0)
	for _, it := range r.st.items {
		if filter.OwnerID != 0 && it.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(it.Category, filter.Category) {
			continue
		}
		if filter.AvailableOnly && !it.Available {
			continue
		}
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return page(items, filter.Offset, filter.Limit), nil
}

func (r itemRepo) Update(_ context.Context, item *models.Item) error {
	if _, ok := r.st.items[item.ID]; !ok {
		return service.ErrNotFound
	}
	r.st.items[item.ID] = *item
	return nil
}

type transactionRepo struct{ st *state }

func (r transactionRepo) Create(_ context.Context, tx *models.Transaction) error {
	tx.ID = r.st.assignID("transactions", tx.ID)
	r.st.transactions[tx.ID] = *tx
	return nil
}

func (r transactionRepo) GetByID(_ context.Context, id int64) (*models.Transaction, error) {
	tx, ok := r.st.transactions[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &tx, nil
}

func (r transactionRepo) GetForUpdate(ctx context.Context, id int64) (*models.Transaction, error) {
	return r.GetByID(ctx, id)
}

func (r transactionRepo) HasPending(_ context.Context, itemID, buyerID int64) (bool, error) {
	for _, tx := range r.st.transactions {
		if tx.ItemID == itemID && tx.BuyerID == buyerID && tx.Status == models.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r transactionRepo) HasOpen(_ context.Context, itemID int64) (bool, error) {
	for _, tx := range r.st.transactions {
		if tx.ItemID == itemID && !tx.Status.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (r transactionRepo) List(_ context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	txs := make([]models.Transaction, 0)
	for _, tx := range r.st.transactions {
		if filter.UserID != 0 {
			switch filter.Role {
			case "buyer":
				if tx.BuyerID != filter.UserID {
					continue
				}
			case "seller":
				if tx.SellerID != filter.UserID {
					continue
				}
			default:
				if !tx.IsParty(filter.UserID) {
					continue
				}
			}
		}
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		txs = append(txs, tx)
	}
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].StartDate.Equal(txs[j].StartDate) {
			return txs[i].StartDate.After(txs[j].StartDate)
		}
		return txs[i].ID > txs[j].ID
	})
	return txs, nil
}

func (r transactionRepo) Update(_ context.Context, tx *models.Transaction) error {
	if _, ok := r.st.transactions[tx.ID]; !ok {
		return service.ErrNotFound
	}
	r.st.transactions[tx.ID] = *tx
	return nil
}

type ratingRepo struct{ st *state }

func (r ratingRepo) Create(_ context.Context, rating *models.Rating) error {
	for _, existing := range r.st.ratings {
		if existing.TransactionID == rating.TransactionID && existing.RaterID == rating.RaterID {
			return fmt.Errorf("rating: %w", service.ErrConflict)
		}
	}
	rating.ID = r.st.assignID("ratings", rating.ID)
	r.st.ratings[rating.ID] = *rating
	return nil
}

func (r ratingRepo) ListByRatee(_ context.Context, userID int64) ([]models.Rating, error) {
	ratings := make([]models.Rating, 0)
	for _, rt := range r.st.ratings {
		if rt.RateeID == userID {
			ratings = append(ratings, rt)
		}
	}
	sort.Slice(ratings, func(i, j int) bool { return ratings[i].ID > ratings[j].ID })
	return ratings, nil
}

func (r ratingRepo) Summary(ctx context.Context, userID int64) (models.RatingSummary, error) {
	ratings, _ := r.ListByRatee(ctx, userID)
	if len(ratings) == 0 {
		return models.RatingSummary{}, nil
	}
	total := 0
	for _, rt := range ratings {
		total += rt.Score
	}
	return models.RatingSummary{Count: len(ratings), Average: float64(total) / float64(len(ratings))}, nil
}

func page[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return rows[:0]
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
