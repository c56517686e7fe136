package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/pkg/logger"
	"github.com/maintsys/mro-stock-service/internal/stock"
	"github.com/maintsys/mro-stock-service/internal/stock/dto"
	"github.com/maintsys/mro-stock-service/internal/stock/repository/memory"
	"github.com/shopspring/decimal"
)

func newTestUseCase() (stock.UseCase, *memory.Repository) {
	repo := memory.NewRepository()
	uc := NewStockUseCase(repo, nil, nil, logger.NewNop())
	return uc, repo
}

func seedPart(repo *memory.Repository, partNumber string, qty float64, price string, status model.PartStatus) {
	repo.AddPart(model.Part{
		PartNumber:      partNumber,
		Name:            "Test part " + partNumber,
		UnitOfMeasure:   "EA",
		QuantityInStock: qty,
		MinimumStock:    1,
		UnitPrice:       decimal.RequireFromString(price),
		Status:          status,
	})
}

func TestRecordConsumption_HappyPath(t *testing.T) {
	uc, repo := newTestUseCase()
	seedPart(repo, "FLT-100", 10, "12.50", model.PartStatusActive)
	seedPart(repo, "BRG-200", 4, "80.00", model.PartStatusActive)

	count, err := uc.RecordConsumption(context.Background(), &dto.ConsumeInput{
		WorkOrderID: "WO-1001",
		Technician:  "J. Smith",
		Items: []dto.ConsumeItem{
			{PartNumber: "FLT-100", Quantity: 3},
			{PartNumber: "BRG-200", Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("RecordConsumption failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 records, got %d", count)
	}

	part, _ := repo.Part("FLT-100")
	if part.QuantityInStock != 7 {
		t.Errorf("Expected FLT-100 stock 7, got %g", part.QuantityInStock)
	}
	part, _ = repo.Part("BRG-200")
	if part.QuantityInStock != 3 {
		t.Errorf("Expected BRG-200 stock 3, got %g", part.QuantityInStock)
	}

	records, err := uc.ListUsageForWorkOrder(context.Background(), "WO-1001")
	if err != nil {
		t.Fatalf("ListUsageForWorkOrder failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 usage records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.RecordedBy != "J. Smith" {
			t.Errorf("Expected technician attribution, got %q", rec.RecordedBy)
		}
		if rec.PartNumber == "FLT-100" {
			want := decimal.RequireFromString("37.50")
			if !rec.TotalCost.Equal(want) {
				t.Errorf("Expected total cost 37.50, got %s", rec.TotalCost)
			}
		}
	}
}

func TestRecordConsumption_LedgerEntries(t *testing.T) {
	uc, repo := newTestUseCase()
	seedPart(repo, "FLT-100", 10, "12.50", model.PartStatusActive)

	_, err := uc.RecordConsumption(context.Background(), &dto.ConsumeInput{
		WorkOrderID: "WO-1002",
		Technician:  "J. Smith",
		Items:       []dto.ConsumeItem{{PartNumber: "FLT-100", Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("RecordConsumption failed: %v", err)
	}

	movements := repo.MovementsForPart("FLT-100")
	if len(movements) != 1 {
		t.Fatalf("Expected 1 movement, got %d", len(movements))
	}
	m := movements[0]
	if m.MovementType != model.MovementIssue {
		t.Errorf("Expected issue movement, got %s", m.MovementType)
	}
	if m.Quantity != -4 {
		t.Errorf("Expected signed quantity -4, got %g", m.Quantity)
	}
	if m.QuantityBefore != 10 || m.QuantityAfter != 6 {
		t.Errorf("Expected before/after 10/6, got %g/%g", m.QuantityBefore, m.QuantityAfter)
	}
	if m.Reference != "WO-1002" {
		t.Errorf("Expected reference WO-1002, got %s", m.Reference)
	}
}

func TestRecordConsumption_EmptyBatchIsNoOp(t *testing.T) {
	uc, repo := newTestUseCase()
	seedPart(repo, "FLT-100", 10, "12.50", model.PartStatusActive)

	count, err := uc.RecordConsumption(context.Background(), &dto.ConsumeInput{
		WorkOrderID: "WO-1003",
		Technician:  "J. Smith",
		Items:       nil,
	})
	if err != nil {
		t.Fatalf("Empty batch should succeed: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected 0 records, got %d", count)
	}
	if movements := repo.MovementsForPart("FLT-100"); len(movements) != 0 {
		t.Errorf("Expected no movements, got %d", len(movements))
	}
}

func TestRecordConsumption_ValidationErrors(t *testing.T) {
	uc, repo := newTestUseCase()
	seedPart(repo, "FLT-100", 10, "12.50", model.PartStatusActive)

	tests := []struct {
		name  string
		input *dto.ConsumeInput
	}{
		{
			name:  "missing_work_order",
			input: &dto.ConsumeInput{Technician: "J. Smith", Items: []dto.ConsumeItem{{PartNumber: "FLT-100", Quantity: 1}}},
		},
		{
			name:  "missing_technician",
			input: &dto.ConsumeInput{WorkOrderID: "WO-1", Items: []dto.ConsumeItem{{PartNumber: "FLT-100", Quantity: 1}}},
		},
		{
			name:  "zero_quantity",
			input: &dto.ConsumeInput{WorkOrderID: "WO-1", Technician: "J. Smith", Items: []dto.ConsumeItem{{PartNumber: "FLT-100", Quantity: 0}}},
		},
		{
			name:  "negative_quantity",
			input: &dto.ConsumeInput{WorkOrderID: "WO-1", Technician: "J. Smith", Items: []dto.ConsumeItem{{PartNumber: "FLT-100", Quantity: -2}}},
		},
		{
			name:  "empty_part_number",
			input: &dto.ConsumeInput{WorkOrderID: "WO-1", Technician: "J. Smith", Items: []dto.ConsumeItem{{PartNumber: "", Quantity: 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.RecordConsumption(context.Background(), tt.input)
			var verr *stock.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
		})
	}

	// Validation failures never touch stock.
	part, _ := repo.Part("FLT-100")
	if part.QuantityInStock != 10 {
		t.Errorf("Expected stock unchanged at 10, got %g", part.QuantityInStock)
	}
}

func TestRecordConsumption_DuplicatePartInBatch(t *testing.T) {
	uc, repo := newTestUseCase()
	seedPart(repo, "FLT-100", 10, "12.50", model.PartStatusActive)

	_, err := uc.RecordConsumption(context.Background(), &dto.ConsumeInput{
		WorkOrderID: "WO-1004",
		Technician:  "J. Smith",
		Items: []dto.ConsumeItem{
			{PartNumber: "FLT-100", Quantity: 2},
			{PartNumber: "FLT-100", Quantity: 3},
		},
	})
	var derr *stock.DuplicatePartError
	if !errors.As(err, &derr) {
		t.Fatalf("Expected DuplicatePartError, got %v", err)
	}
	if derr.PartNumber != "FLT-100" {
		t.Errorf("Expected part FLT-100 in error, got %s", derr.PartNumber)
	}

	part, _ := repo.Part("FLT-100")
	if part.QuantityInStock != 10 {
		t.Errorf("Expected stock unchanged at 10, got %g", part.QuantityInStock)
	}
}

func TestRecordConsumption_UnknownPart(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.RecordConsumption(context.Background(), &dto.ConsumeInput{
		WorkOrderID: "WO-1005",
		Technician:  "J. Smith",
		Items:       []dto.ConsumeItem{{PartNumber: "NOPE-1", Quantity: 1}},
	})
	var nferr *stock.PartNotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("Expected PartNotFoundError, got %v", err)
	}
}

func TestRecordConsumption_InactivePart(t *testing.T) {
	uc, repo := newTestUseCase()
	seedPart(repo, "OBS-900", 5, "3.00", model.PartStatusInactive)

	_, err := uc.RecordConsumption(context.Background(), &dto.ConsumeInput{
		WorkOrderID: "WO-1006",
		Technician:  "J. Smith",
		Items:       []dto.ConsumeItem{{PartNumber: "OBS-900", Quantity: 1}},
	})
	var ierr *stock.PartInactiveError
	if !errors.As(err, &ierr) {
		t.Fatalf("Expected PartInactiveError, got %v", err)
	}
}

func TestRecordConsumption_OutOfStock(t *testing.T) {
	uc, repo := newTestUseCase()
	seedPart(repo, "FLT-100", 0, "12.50", model.PartStatusActive)

	_, err := uc.RecordConsumption(context.Background(), &dto.ConsumeInput{
		WorkOrderID: "WO-1007",
		Technician:  "J. Smith",
		Items:       []dto.ConsumeItem{{PartNumber: "FLT-100", Quantity: 1}},
	})
	var oerr *stock.OutOfStockError
	if !errors.As(err, &oerr) {
		t.Fatalf("Expected OutOfStockError, got %v", err)
	}
	if oerr.Available != 0 {
		t.Errorf("Expected available 0 in error, got %g", oerr.Available)
	}
}

func TestRecordConsumption_InsufficientStock(t *testing.T) {
	uc, repo := newTestUseCase()
	seedPart(repo, "FLT-100", 2, "12.50", model.PartStatusActive)

	_, err := uc.RecordConsumption(context.Background(), &dto.ConsumeInput{
		WorkOrderID: "WO-1008",
		Technician:  "J. Smith",
		Items:       []dto.ConsumeItem{{PartNumber: "FLT-100", Quantity: 5}},
	})
	var serr *stock.InsufficientStockError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected InsufficientStockError, got %v", err)
	}
	if serr.Requested != 5 || serr.Available != 2 {
		t.Errorf("Expected requested/available 5/2, got %g/%g", serr.Requested, serr.Available)
	}

	part, _ := repo.Part("FLT-100")
	if part.QuantityInStock != 2 {
		t.Errorf("Expected stock unchanged at 2, got %g", part.QuantityInStock)
	}
}

func TestRecordConsumption_BatchAtomicity(t *testing.T) {
	uc, repo := newTestUseCase()
	seedPart(repo, "FLT-100", 10, "12.50", model.PartStatusActive)
	seedPart(repo, "BRG-200", 1, "80.00", model.PartStatusActive)

	// The second item fails, so the first item's deduction must not stick.
	_, err := uc.RecordConsumption(context.Background(), &dto.ConsumeInput{
		WorkOrderID: "WO-1009",
		Technician:  "J. Smith",
		Items: []dto.ConsumeItem{
			{PartNumber: "FLT-100", Quantity: 5},
			{PartNumber: "BRG-200", Quantity: 3},
		},
	})
	var serr *stock.InsufficientStockError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected InsufficientStockError, got %v", err)
	}

	part, _ := repo.Part("FLT-100")
	if part.QuantityInStock != 10 {
		t.Errorf("Expected FLT-100 rolled back to 10, got %g", part.QuantityInStock)
	}
	part, _ = repo.Part("BRG-200")
	if part.QuantityInStock != 1 {
		t.Errorf("Expected BRG-200 unchanged at 1, got %g", part.QuantityInStock)
	}
	if movements := repo.MovementsForPart("FLT-100"); len(movements) != 0 {
		t.Errorf("Expected no movements after rollback, got %d", len(movements))
	}
	records, _ := uc.ListUsageForWorkOrder(context.Background(), "WO-1009")
	if len(records) != 0 {
		t.Errorf("Expected no usage records after rollback, got %d", len(records))
	}
}

func TestRecordConsumption_ConcurrentOverDemand(t *testing.T) {
	uc, repo := newTestUseCase()
	seedPart(repo, "FLT-100", 10, "12.50", model.PartStatusActive)

	// Combined demand 16 > 10 on hand: exactly one request can win.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, in := range []*dto.ConsumeInput{
		{WorkOrderID: "WO-2001", Technician: "A", Items: []dto.ConsumeItem{{PartNumber: "FLT-100", Quantity: 8}}},
		{WorkOrderID: "WO-2002", Technician: "B", Items: []dto.ConsumeItem{{PartNumber: "FLT-100", Quantity: 8}}},
	} {
		wg.Add(1)
		go func(i int, in *dto.ConsumeInput) {
			defer wg.Done()
			_, errs[i] = uc.RecordConsumption(context.Background(), in)
		}(i, in)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		failed++
		var serr *stock.InsufficientStockError
		if !errors.As(err, &serr) {
			t.Errorf("Loser should see InsufficientStockError, got %v", err)
		}
	}
	if succeeded != 1 || failed != 1 {
		t.Fatalf("Expected exactly one winner, got %d successes and %d failures", succeeded, failed)
	}

	part, _ := repo.Part("FLT-100")
	if part.QuantityInStock != 2 {
		t.Errorf("Expected stock 2 after the single winning issue, got %g", part.QuantityInStock)
	}
}

func TestReceiveStock(t *testing.T) {
	uc, repo := newTestUseCase()
	seedPart(repo, "FLT-100", 3, "12.50", model.PartStatusActive)

	movement, err := uc.ReceiveStock(context.Background(), &dto.ReceiveInput{
		PartNumber: "FLT-100",
		Quantity:   12,
		Actor:      "storekeeper",
		Reference:  "PO-555",
	})
	if err != nil {
		t.Fatalf("ReceiveStock failed: %v", err)
	}
	if movement.MovementType != model.MovementReceipt {
		t.Errorf("Expected receipt movement, got %s", movement.MovementType)
	}
	if movement.QuantityBefore != 3 || movement.QuantityAfter != 15 {
		t.Errorf("Expected before/after 3/15, got %g/%g", movement.QuantityBefore, movement.QuantityAfter)
	}

	part, _ := repo.Part("FLT-100")
	if part.QuantityInStock != 15 {
		t.Errorf("Expected stock 15, got %g", part.QuantityInStock)
	}
}

func TestReceiveStock_InactivePartAllowed(t *testing.T) {
	uc, repo := newTestUseCase()
	seedPart(repo, "OBS-900", 0, "3.00", model.PartStatusInactive)

	_, err := uc.ReceiveStock(context.Background(), &dto.ReceiveInput{
		PartNumber: "OBS-900",
		Quantity:   5,
		Actor:      "storekeeper",
	})
	if err != nil {
		t.Fatalf("Receipts for inactive parts should succeed: %v", err)
	}

	part, _ := repo.Part("OBS-900")
	if part.QuantityInStock != 5 {
		t.Errorf("Expected stock 5, got %g", part.QuantityInStock)
	}
}

func TestReceiveStock_Validation(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.ReceiveStock(context.Background(), &dto.ReceiveInput{
		PartNumber: "FLT-100",
		Quantity:   -1,
		Actor:      "storekeeper",
	})
	var verr *stock.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError for negative receipt, got %v", err)
	}
}

func TestAdjustStock(t *testing.T) {
	uc, repo := newTestUseCase()
	seedPart(repo, "FLT-100", 10, "12.50", model.PartStatusActive)

	movement, err := uc.AdjustStock(context.Background(), &dto.AdjustInput{
		PartNumber:     "FLT-100",
		QuantityChange: -3,
		Actor:          "auditor",
		Reason:         "cycle count correction",
	})
	if err != nil {
		t.Fatalf("AdjustStock failed: %v", err)
	}
	if movement.Quantity != -3 {
		t.Errorf("Expected signed quantity -3, got %g", movement.Quantity)
	}

	part, _ := repo.Part("FLT-100")
	if part.QuantityInStock != 7 {
		t.Errorf("Expected stock 7, got %g", part.QuantityInStock)
	}
}

func TestAdjustStock_CannotGoNegative(t *testing.T) {
	uc, repo := newTestUseCase()
	seedPart(repo, "FLT-100", 2, "12.50", model.PartStatusActive)

	_, err := uc.AdjustStock(context.Background(), &dto.AdjustInput{
		PartNumber:     "FLT-100",
		QuantityChange: -5,
		Actor:          "auditor",
		Reason:         "cycle count correction",
	})
	var serr *stock.InsufficientStockError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected InsufficientStockError, got %v", err)
	}

	part, _ := repo.Part("FLT-100")
	if part.QuantityInStock != 2 {
		t.Errorf("Expected stock unchanged at 2, got %g", part.QuantityInStock)
	}
}

func TestListMovements_Filtering(t *testing.T) {
	uc, repo := newTestUseCase()
	seedPart(repo, "FLT-100", 20, "12.50", model.PartStatusActive)
	seedPart(repo, "BRG-200", 20, "80.00", model.PartStatusActive)

	ctx := context.Background()
	if _, err := uc.ReceiveStock(ctx, &dto.ReceiveInput{PartNumber: "FLT-100", Quantity: 5, Actor: "sk"}); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.RecordConsumption(ctx, &dto.ConsumeInput{
		WorkOrderID: "WO-3001",
		Technician:  "J. Smith",
		Items: []dto.ConsumeItem{
			{PartNumber: "FLT-100", Quantity: 2},
			{PartNumber: "BRG-200", Quantity: 1},
		},
	}); err != nil {
		t.Fatal(err)
	}

	movements, total, err := uc.ListMovements(ctx, &dto.MovementFilters{PartNumber: "FLT-100"})
	if err != nil {
		t.Fatalf("ListMovements failed: %v", err)
	}
	if total != 2 || len(movements) != 2 {
		t.Fatalf("Expected 2 FLT-100 movements, got %d", len(movements))
	}

	movements, _, err = uc.ListMovements(ctx, &dto.MovementFilters{MovementType: string(model.MovementIssue)})
	if err != nil {
		t.Fatalf("ListMovements failed: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("Expected 2 issue movements, got %d", len(movements))
	}
	for _, m := range movements {
		if m.Reference != "WO-3001" {
			t.Errorf("Expected work order reference, got %s", m.Reference)
		}
	}
}

func TestAcquireWriteLock_NoRedisConfigured(t *testing.T) {
	uc := &stockUseCase{logger: logger.NewNop()}

	release, err := uc.acquireWriteLock(context.Background(), "lock:stock:wo:WO-3001")
	if err != nil {
		t.Fatalf("Lock must be skipped without redis, got %v", err)
	}
	if release == nil {
		t.Fatal("Expected a release func")
	}
	release()
}
