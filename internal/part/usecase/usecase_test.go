package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/maintsys/mro-stock-service/internal/audit"
	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/part"
	"github.com/maintsys/mro-stock-service/internal/part/dto"
	"github.com/maintsys/mro-stock-service/internal/pkg/logger"
	"github.com/shopspring/decimal"
)

// fakeRepo implements part.Repository over maps for the usecase tests.
type fakeRepo struct {
	mu      sync.Mutex
	nextID  int64
	parts   map[string]model.Part
	history map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{parts: map[string]model.Part{}, history: map[string]bool{}}
}

var _ part.Repository = (*fakeRepo)(nil)

func (r *fakeRepo) Create(_ context.Context, p *model.Part) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	r.parts[p.PartNumber] = *p
	return nil
}

func (r *fakeRepo) FindByPartNumber(_ context.Context, partNumber string) (*model.Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parts[partNumber]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeRepo) FindAll(_ context.Context, f *dto.PartFilters) ([]model.Part, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Part
	for _, p := range r.parts {
		if f.Status != "" && string(p.Status) != f.Status {
			continue
		}
		if f.EngineeringSystem != "" && (p.EngineeringSystem == nil || *p.EngineeringSystem != f.EngineeringSystem) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartNumber < out[j].PartNumber })
	return out, len(out), nil
}

func (r *fakeRepo) Update(_ context.Context, p *model.Part) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parts[p.PartNumber] = *p
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, partNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.parts, partNumber)
	return nil
}

func (r *fakeRepo) IsPartNumberUnique(_ context.Context, partNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, taken := r.parts[partNumber]
	return !taken, nil
}

func (r *fakeRepo) HasHistory(_ context.Context, partNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history[partNumber], nil
}

func (r *fakeRepo) LowStock(_ context.Context) ([]dto.LowStockPart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []dto.LowStockPart
	for _, p := range r.parts {
		if p.Status == model.PartStatusActive && p.QuantityInStock < p.MinimumStock {
			out = append(out, dto.LowStockPart{
				PartNumber:      p.PartNumber,
				Name:            p.Name,
				QuantityInStock: p.QuantityInStock,
				MinimumStock:    p.MinimumStock,
				Deficit:         p.MinimumStock - p.QuantityInStock,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deficit > out[j].Deficit })
	return out, nil
}

func (r *fakeRepo) Summary(_ context.Context) (*dto.StockSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := &dto.StockSummary{TotalValue: decimal.Zero}
	for _, p := range r.parts {
		if p.Status != model.PartStatusActive {
			continue
		}
		summary.ActivePartCount++
		summary.TotalQuantity += p.QuantityInStock
		summary.TotalValue = summary.TotalValue.Add(p.UnitPrice.Mul(decimal.NewFromFloat(p.QuantityInStock)))
		if p.QuantityInStock < p.MinimumStock {
			summary.LowStockCount++
		}
	}
	return summary, nil
}

func newTestUseCase() (part.UseCase, *fakeRepo) {
	repo := newFakeRepo()
	uc := NewPartUseCase(repo, nil, audit.NopRecorder{}, logger.NewNop())
	return uc, repo
}

func TestCreatePart(t *testing.T) {
	uc, repo := newTestUseCase()

	p, err := uc.CreatePart(context.Background(), &dto.CreatePartInput{
		PartNumber:      "FLT-100",
		Name:            "Fuel filter",
		UnitOfMeasure:   "EA",
		InitialQuantity: 10,
		MinimumStock:    2,
		UnitPrice:       "12.50",
		Actor:           "admin",
	})
	if err != nil {
		t.Fatalf("CreatePart failed: %v", err)
	}
	if p.ID == 0 {
		t.Error("Expected assigned ID")
	}
	if p.Status != model.PartStatusActive {
		t.Errorf("Expected new part to be Active, got %s", p.Status)
	}
	if !p.UnitPrice.Equal(decimal.RequireFromString("12.50")) {
		t.Errorf("Expected unit price 12.50, got %s", p.UnitPrice)
	}

	stored, _ := repo.FindByPartNumber(context.Background(), "FLT-100")
	if stored == nil {
		t.Fatal("Part not persisted")
	}
}

func TestCreatePart_DuplicatePartNumber(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	input := &dto.CreatePartInput{PartNumber: "FLT-100", Name: "Fuel filter", Actor: "admin"}
	if _, err := uc.CreatePart(ctx, input); err != nil {
		t.Fatal(err)
	}

	_, err := uc.CreatePart(ctx, input)
	var existsErr *part.AlreadyExistsError
	if !errors.As(err, &existsErr) {
		t.Fatalf("Expected AlreadyExistsError, got %v", err)
	}
}

func TestCreatePart_Validation(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	tests := []struct {
		name  string
		input *dto.CreatePartInput
	}{
		{"missing_part_number", &dto.CreatePartInput{Name: "x"}},
		{"missing_name", &dto.CreatePartInput{PartNumber: "P-1"}},
		{"negative_quantity", &dto.CreatePartInput{PartNumber: "P-1", Name: "x", InitialQuantity: -1}},
		{"bad_price", &dto.CreatePartInput{PartNumber: "P-1", Name: "x", UnitPrice: "abc"}},
		{"negative_price", &dto.CreatePartInput{PartNumber: "P-1", Name: "x", UnitPrice: "-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.CreatePart(ctx, tt.input)
			var verr *part.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
		})
	}
}

func TestUpdatePart_NeverTouchesQuantity(t *testing.T) {
	uc, repo := newTestUseCase()
	ctx := context.Background()

	if _, err := uc.CreatePart(ctx, &dto.CreatePartInput{
		PartNumber:      "FLT-100",
		Name:            "Fuel filter",
		InitialQuantity: 10,
		UnitPrice:       "12.50",
		Actor:           "admin",
	}); err != nil {
		t.Fatal(err)
	}

	updated, err := uc.UpdatePart(ctx, &dto.UpdatePartInput{
		PartNumber:   "FLT-100",
		Name:         "Fuel filter (fine)",
		MinimumStock: 4,
		UnitPrice:    "14.00",
		Actor:        "admin",
	})
	if err != nil {
		t.Fatalf("UpdatePart failed: %v", err)
	}
	if updated.Name != "Fuel filter (fine)" {
		t.Errorf("Expected updated name, got %s", updated.Name)
	}
	if updated.QuantityInStock != 10 {
		t.Errorf("Update must not change stock level, got %g", updated.QuantityInStock)
	}

	stored, _ := repo.FindByPartNumber(ctx, "FLT-100")
	if stored.QuantityInStock != 10 {
		t.Errorf("Stored stock level changed to %g", stored.QuantityInStock)
	}
}

func TestUpdatePart_NotFound(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.UpdatePart(context.Background(), &dto.UpdatePartInput{PartNumber: "NOPE", Name: "x"})
	var nferr *part.NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}

func TestDeactivateAndReactivatePart(t *testing.T) {
	uc, repo := newTestUseCase()
	ctx := context.Background()

	if _, err := uc.CreatePart(ctx, &dto.CreatePartInput{PartNumber: "FLT-100", Name: "Fuel filter", Actor: "admin"}); err != nil {
		t.Fatal(err)
	}

	if err := uc.DeactivatePart(ctx, "FLT-100", "admin"); err != nil {
		t.Fatalf("DeactivatePart failed: %v", err)
	}
	stored, _ := repo.FindByPartNumber(ctx, "FLT-100")
	if stored.Status != model.PartStatusInactive {
		t.Errorf("Expected Inactive, got %s", stored.Status)
	}

	if err := uc.ReactivatePart(ctx, "FLT-100", "admin"); err != nil {
		t.Fatalf("ReactivatePart failed: %v", err)
	}
	stored, _ = repo.FindByPartNumber(ctx, "FLT-100")
	if stored.Status != model.PartStatusActive {
		t.Errorf("Expected Active, got %s", stored.Status)
	}
}

func TestDeletePart_BlockedByHistory(t *testing.T) {
	uc, repo := newTestUseCase()
	ctx := context.Background()

	if _, err := uc.CreatePart(ctx, &dto.CreatePartInput{PartNumber: "FLT-100", Name: "Fuel filter", Actor: "admin"}); err != nil {
		t.Fatal(err)
	}
	repo.history["FLT-100"] = true

	err := uc.DeletePart(ctx, "FLT-100", "admin")
	var refErr *part.ReferencedError
	if !errors.As(err, &refErr) {
		t.Fatalf("Expected ReferencedError, got %v", err)
	}

	if stored, _ := repo.FindByPartNumber(ctx, "FLT-100"); stored == nil {
		t.Error("Part must survive a blocked delete")
	}
}

func TestDeletePart_NoHistory(t *testing.T) {
	uc, repo := newTestUseCase()
	ctx := context.Background()

	if _, err := uc.CreatePart(ctx, &dto.CreatePartInput{PartNumber: "FLT-100", Name: "Fuel filter", Actor: "admin"}); err != nil {
		t.Fatal(err)
	}

	if err := uc.DeletePart(ctx, "FLT-100", "admin"); err != nil {
		t.Fatalf("DeletePart failed: %v", err)
	}
	if stored, _ := repo.FindByPartNumber(ctx, "FLT-100"); stored != nil {
		t.Error("Part should be gone")
	}
}

func TestLowStockAndSummary(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	seeds := []*dto.CreatePartInput{
		{PartNumber: "FLT-100", Name: "Fuel filter", InitialQuantity: 1, MinimumStock: 5, UnitPrice: "12.50", Actor: "admin"},
		{PartNumber: "BRG-200", Name: "Bearing", InitialQuantity: 10, MinimumStock: 2, UnitPrice: "80.00", Actor: "admin"},
		{PartNumber: "SEA-300", Name: "Seal", InitialQuantity: 0, MinimumStock: 3, UnitPrice: "5.00", Actor: "admin"},
	}
	for _, in := range seeds {
		if _, err := uc.CreatePart(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	low, err := uc.LowStock(ctx)
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("Expected 2 low-stock parts, got %d", len(low))
	}
	if low[0].Deficit < low[1].Deficit {
		t.Error("Expected ordering by deficit descending")
	}

	summary, err := uc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.ActivePartCount != 3 {
		t.Errorf("Expected 3 active parts, got %d", summary.ActivePartCount)
	}
	if summary.LowStockCount != 2 {
		t.Errorf("Expected 2 low-stock parts, got %d", summary.LowStockCount)
	}
	// 1×12.50 + 10×80.00 + 0×5.00
	want := decimal.RequireFromString("812.50")
	if !summary.TotalValue.Equal(want) {
		t.Errorf("Expected total value 812.50, got %s", summary.TotalValue)
	}
}
