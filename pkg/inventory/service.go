package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/goliatone/go-bakery/pkg/catalog"
)

// Service validates form submissions and applies them to the stores.
type Service struct {
	catalog  Catalog
	branches Branches
	records  Records
	ledger   Ledger

	now       func() time.Time
	newID     func() string
	logger    zerolog.Logger
	observers []func(Transaction)
	hooks     []func(context.Context, Transaction) error
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides transaction id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTransactionObserver registers a callback run after each recorded
// transaction.
func WithTransactionObserver(fn func(Transaction)) Option {
	return func(s *Service) {
		if fn != nil {
			s.observers = append(s.observers, fn)
		}
	}
}

// WithTransactionHook registers fn to run after each recorded transaction
// commits. Hook errors are logged and do not fail the transaction.
func WithTransactionHook(fn func(context.Context, Transaction) error) Option {
	return func(s *Service) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

// NewService wires a service over the given stores.
func NewService(cat Catalog, branches Branches, records Records, ledger Ledger, opts ...Option) *Service {
	s := &Service{
		catalog:  cat,
		branches: branches,
		records:  records,
		ledger:   ledger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		logger:   log.Logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SaveInventory validates form and stores the stock level it names,
// replacing the quantity of an existing record for the same branch and
// product.
func (s *Service) SaveInventory(ctx context.Context, form InventoryForm) (Record, error) {
	verrs := ValidationErrors{}
	sel, err := s.cleanSelection(ctx, verrs, form.Branch, form.ProductType, form.ProductChoice)
	if err != nil {
		return Record{}, err
	}
	quantity := cleanStockLevel(verrs, form.Quantity)
	if !verrs.Empty() {
		return Record{}, verrs
	}

	record := Record{
		BranchID:    sel.branch.ID,
		ProductType: sel.product.Type,
		ProductID:   sel.product.ID,
		ProductName: sel.product.Name,
		Quantity:    quantity,
		LastUpdated: s.now(),
	}
	if err := s.records.UpsertRecord(ctx, record); err != nil {
		return Record{}, fmt.Errorf("inventory: save record: %w", err)
	}

	s.logger.Info().
		Uint64("branch_id", record.BranchID).
		Str("product_type", string(record.ProductType)).
		Str("product", record.ProductName).
		Float64("quantity", record.Quantity).
		Msg("inventory saved")
	return record, nil
}

// RecordTransaction validates form, stores the movement and adjusts the
// matching inventory record. Stock-outs require an existing record holding
// enough stock.
func (s *Service) RecordTransaction(ctx context.Context, form TransactionForm) (Transaction, error) {
	verrs := ValidationErrors{}
	sel, err := s.cleanSelection(ctx, verrs, form.Branch, form.ProductType, form.ProductChoice)
	if err != nil {
		return Transaction{}, err
	}
	quantity := cleanMovement(verrs, form.Quantity)
	txType := cleanTransactionType(verrs, form.TransactionType)
	if !verrs.Empty() {
		return Transaction{}, verrs
	}

	now := s.now()
	tx := Transaction{
		ID:          s.newID(),
		BranchID:    sel.branch.ID,
		ProductType: sel.product.Type,
		ProductID:   sel.product.ID,
		ProductName: sel.product.Name,
		Quantity:    quantity,
		Type:        txType,
		CreatedAt:   now,
	}

	err = s.ledger.ApplyTransaction(ctx, tx, func(current Record, found bool) (Record, error) {
		if tx.Type == StockOut {
			if !found {
				return Record{}, stockError(ErrNoInventory,
					fmt.Sprintf("No inventory record found for %s in %s.", tx.ProductName, sel.branch))
			}
			if current.Quantity < float64(tx.Quantity) {
				return Record{}, stockError(ErrInsufficientStock,
					fmt.Sprintf("Not enough stock of %s in %s. Available: %s, requested: %d.",
						tx.ProductName, sel.branch, FormatQuantity(current.Quantity), tx.Quantity))
			}
		}
		if !found {
			current.ProductID = tx.ProductID
		}
		next := tx.Apply(current)
		next.LastUpdated = now
		return next, nil
	})
	if err != nil {
		if _, ok := AsValidation(err); ok {
			return Transaction{}, err
		}
		return Transaction{}, fmt.Errorf("inventory: record transaction: %w", err)
	}

	for _, fn := range s.observers {
		fn(tx)
	}
	for _, fn := range s.hooks {
		if err := fn(ctx, tx); err != nil {
			s.logger.Error().Err(err).Str("id", tx.ID).Msg("transaction hook failed")
		}
	}
	s.logger.Info().
		Str("id", tx.ID).
		Str("type", string(tx.Type)).
		Uint64("branch_id", tx.BranchID).
		Str("product", tx.ProductName).
		Int("quantity", tx.Quantity).
		Msg("stock transaction recorded")
	return tx, nil
}

func stockError(sentinel error, message string) error {
	return fmt.Errorf("%w: %w", ValidationErrors{FormKey: {message}}, sentinel)
}

// Row is an inventory record joined with its branch for display.
type Row struct {
	Record
	Branch Branch
	Unit   string
}

// Inventory lists stock levels ordered by branch, type and product.
func (s *Service) Inventory(ctx context.Context) ([]Row, error) {
	records, err := s.records.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory: list records: %w", err)
	}
	branches, err := s.branchIndex(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, Row{
			Record: record,
			Branch: branches[record.BranchID],
			Unit:   catalog.Unit(record.ProductType),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Branch.Name != b.Branch.Name {
			return a.Branch.Name < b.Branch.Name
		}
		if a.ProductType != b.ProductType {
			return a.ProductType < b.ProductType
		}
		return a.ProductName < b.ProductName
	})
	return rows, nil
}

// TransactionRow is a stock movement joined with its branch for display.
type TransactionRow struct {
	Transaction
	Branch Branch
}

// Transactions lists stock movements, newest first.
func (s *Service) Transactions(ctx context.Context) ([]TransactionRow, error) {
	txs, err := s.ledger.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory: list transactions: %w", err)
	}
	branches, err := s.branchIndex(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, TransactionRow{Transaction: tx, Branch: branches[tx.BranchID]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return rows, nil
}

// Branches lists branches ordered by name.
func (s *Service) Branches(ctx context.Context) ([]Branch, error) {
	list, err := s.branches.Branches(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory: list branches: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// Products lists the catalog entries of a type.
func (s *Service) Products(ctx context.Context, productType catalog.ProductType) ([]catalog.Product, error) {
	list, err := s.catalog.ProductsByType(ctx, productType)
	if err != nil {
		return nil, fmt.Errorf("inventory: list products: %w", err)
	}
	return list, nil
}

func (s *Service) branchIndex(ctx context.Context) (map[uint64]Branch, error) {
	list, err := s.branches.Branches(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory: list branches: %w", err)
	}
	index := make(map[uint64]Branch, len(list))
	for _, b := range list {
		index[b.ID] = b
	}
	return index, nil
}
