package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"satang/internal/core"
	"satang/internal/log"
	"satang/internal/storage"
)

// CategoryService owns the set of expense/income categories. Writers
// serialize through a single mutex; the store never sees two concurrent
// category mutations from one service instance.
type CategoryService struct {
	mu    sync.Mutex
	store storage.Store
	log   *log.Logger
}

func NewCategoryService(store storage.Store, logger *log.Logger) *CategoryService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &CategoryService{
		store: store,
		log:   logger.WithComponent(log.ComponentCategory),
	}
}

// Init seeds the default category set when the store holds none.
// Idempotent: safe to call on every app start.
func (s *CategoryService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, c := range defaultCategories() {
		if err := s.store.PutCategory(ctx, c); err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}
	s.log.InfoContext(ctx, "Seeded default categories", log.FieldOperation, log.OpSeed)
	return nil
}

// Add creates a user category at the end of its type partition.
func (s *CategoryService) Add(ctx context.Context, name string, typ core.CategoryType, icon, color string) (*core.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &core.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(name) > core.MaxCategoryNameLen {
		return nil, &core.ValidationError{Field: "name", Reason: fmt.Sprintf("must be at most %d characters", core.MaxCategoryNameLen)}
	}
	if !typ.Valid() {
		return nil, &core.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown category type %q", typ)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	nextOrder := 0
	for _, c := range existing {
		if c.Type == typ && c.SortOrder >= nextOrder {
			nextOrder = c.SortOrder + 1
		}
	}

	c := core.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      typ,
		Icon:      icon,
		Color:     color,
		SortOrder: nextOrder,
	}
	if err := s.store.PutCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("put category: %w", err)
	}

	s.log.InfoContext(ctx, "Category added",
		log.FieldCategoryID, c.ID,
		log.FieldTxType, string(typ),
		log.FieldOperation, log.OpCreate)
	return &c, nil
}

// Reorder rewrites sortOrder inside one type partition to match the given
// id sequence. The other partition is untouched.
func (s *CategoryService) Reorder(ctx context.Context, typ core.CategoryType, orderedIDs []string) error {
	if !typ.Valid() {
		return &core.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown category type %q", typ)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range orderedIDs {
		c, err := s.store.GetCategory(ctx, id)
		if err != nil {
			return fmt.Errorf("get category: %w", err)
		}
		if c == nil {
			return &core.NotFoundError{Table: "categories", ID: id}
		}
		if c.Type != typ {
			return &core.ValidationError{Field: "orderedIDs", Reason: fmt.Sprintf("category %q belongs to the %s partition", id, c.Type)}
		}
		c.SortOrder = i
		if err := s.store.PutCategory(ctx, *c); err != nil {
			return fmt.Errorf("put category: %w", err)
		}
	}

	s.log.InfoContext(ctx, "Categories reordered",
		log.FieldTxType, string(typ),
		log.FieldCount, len(orderedIDs),
		log.FieldOperation, log.OpReorder)
	return nil
}

// Delete removes a category. System categories and categories referenced
// by existing transactions are kept; financial history never orphans.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("get category: %w", err)
	}
	if c == nil {
		return &core.NotFoundError{Table: "categories", ID: id}
	}
	if c.IsSystem {
		return &core.PreconditionError{Reason: fmt.Sprintf("category %q is a system category", id)}
	}

	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	for _, tx := range txs {
		if tx.CategoryID == id {
			return &core.PreconditionError{Reason: fmt.Sprintf("category %q is referenced by transaction %q", id, tx.ID)}
		}
	}

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.log.InfoContext(ctx, "Category deleted",
		log.FieldCategoryID, id,
		log.FieldOperation, log.OpDelete)
	return nil
}

// GetByID returns the category, or (nil, nil) when absent. Absence is not
// an error here; callers probe freely.
func (s *CategoryService) GetByID(ctx context.Context, id string) (*core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

// List returns all categories, partitions interleaved, ordered by type
// then sortOrder.
func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].Type != cats[j].Type {
			return cats[i].Type < cats[j].Type
		}
		return cats[i].SortOrder < cats[j].SortOrder
	})
	return cats, nil
}

// ListByType returns one partition ordered by sortOrder.
func (s *CategoryService) ListByType(ctx context.Context, typ core.CategoryType) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := cats[:0]
	for _, c := range cats {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}
