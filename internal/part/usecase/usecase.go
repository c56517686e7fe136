package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/maintsys/mro-stock-service/internal/audit"
	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/part"
	"github.com/maintsys/mro-stock-service/internal/part/dto"
	"github.com/maintsys/mro-stock-service/internal/pkg/cache"
	"github.com/maintsys/mro-stock-service/internal/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type partUseCase struct {
	repo    part.Repository
	cache   *cache.RedisClient
	auditor audit.Recorder
	logger  logger.ZapLogger
}

func NewPartUseCase(repo part.Repository, c *cache.RedisClient, auditor audit.Recorder, log logger.ZapLogger) part.UseCase {
	return &partUseCase{
		repo:    repo,
		cache:   c,
		auditor: auditor,
		logger:  log,
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parsePrice(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &part.ValidationError{Reason: fmt.Sprintf("unit price %q is not a number", raw)}
	}
	if price.IsNegative() {
		return decimal.Zero, &part.ValidationError{Reason: "unit price may not be negative"}
	}
	return price, nil
}

func (uc *partUseCase) CreatePart(ctx context.Context, input *dto.CreatePartInput) (*model.Part, error) {
	if input.PartNumber == "" {
		return nil, &part.ValidationError{Reason: "part number is required"}
	}
	if input.Name == "" {
		return nil, &part.ValidationError{Reason: "name is required"}
	}
	if input.InitialQuantity < 0 {
		return nil, &part.ValidationError{Reason: "initial quantity may not be negative"}
	}
	if input.MinimumStock < 0 {
		return nil, &part.ValidationError{Reason: "minimum stock may not be negative"}
	}
	price, err := parsePrice(input.UnitPrice)
	if err != nil {
		return nil, err
	}

	unique, err := uc.repo.IsPartNumberUnique(ctx, input.PartNumber)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, &part.AlreadyExistsError{PartNumber: input.PartNumber}
	}

	now := time.Now()
	uom := input.UnitOfMeasure
	if uom == "" {
		uom = "EA"
	}

	p := &model.Part{
		PartNumber:        input.PartNumber,
		Name:              input.Name,
		ModelNumber:       nilIfEmpty(input.ModelNumber),
		Equipment:         nilIfEmpty(input.Equipment),
		EngineeringSystem: nilIfEmpty(input.EngineeringSystem),
		UnitOfMeasure:     uom,
		QuantityInStock:   input.InitialQuantity,
		MinimumStock:      input.MinimumStock,
		UnitPrice:         price,
		Supplier:          nilIfEmpty(input.Supplier),
		Location:          input.Location,
		Rack:              nilIfEmpty(input.Rack),
		Row:               nilIfEmpty(input.Row),
		Bin:               nilIfEmpty(input.Bin),
		Notes:             nilIfEmpty(input.Notes),
		Status:            model.PartStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	uc.logger.Info("created part", zap.String("part_number", p.PartNumber))
	uc.auditor.Record(ctx, audit.Event{
		EntityType: "part",
		EntityID:   p.PartNumber,
		Action:     model.AuditActionCreate,
		Actor:      input.Actor,
		After:      p,
	})

	go uc.invalidateListCache(context.Background())
	return p, nil
}

func (uc *partUseCase) GetPart(ctx context.Context, partNumber string) (*model.Part, error) {
	p, err := uc.repo.FindByPartNumber(ctx, partNumber)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &part.NotFoundError{PartNumber: partNumber}
	}
	return p, nil
}

func (uc *partUseCase) ListParts(ctx context.Context, filters *dto.PartFilters) ([]model.Part, int, error) {
	cacheKey, keyErr := uc.generateCacheKey(filters)
	if keyErr == nil && uc.cache != nil {
		val, err := uc.cache.Client.Get(ctx, cacheKey).Result()
		if err == nil {
			var result struct {
				Parts []model.Part
				Count int
			}
			if err := json.Unmarshal([]byte(val), &result); err == nil {
				return result.Parts, result.Count, nil
			}
		}
	}

	parts, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if keyErr == nil && uc.cache != nil {
		cacheData := struct {
			Parts []model.Part
			Count int
		}{
			Parts: parts,
			Count: count,
		}
		if data, err := json.Marshal(cacheData); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, 5*time.Minute)
		}
	}

	return parts, count, nil
}

func (uc *partUseCase) generateCacheKey(filters *dto.PartFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("parts:list:%x", md5.Sum(data)), nil
}

func (uc *partUseCase) invalidateListCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	keys, err := uc.cache.Client.Keys(ctx, "parts:list:*").Result()
	if err == nil && len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}

func (uc *partUseCase) UpdatePart(ctx context.Context, input *dto.UpdatePartInput) (*model.Part, error) {
	p, err := uc.repo.FindByPartNumber(ctx, input.PartNumber)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &part.NotFoundError{PartNumber: input.PartNumber}
	}
	if input.Name == "" {
		return nil, &part.ValidationError{Reason: "name is required"}
	}
	if input.MinimumStock < 0 {
		return nil, &part.ValidationError{Reason: "minimum stock may not be negative"}
	}
	price, err := parsePrice(input.UnitPrice)
	if err != nil {
		return nil, err
	}

	before := *p

	p.Name = input.Name
	p.ModelNumber = nilIfEmpty(input.ModelNumber)
	p.Equipment = nilIfEmpty(input.Equipment)
	p.EngineeringSystem = nilIfEmpty(input.EngineeringSystem)
	if input.UnitOfMeasure != "" {
		p.UnitOfMeasure = input.UnitOfMeasure
	}
	p.MinimumStock = input.MinimumStock
	p.UnitPrice = price
	p.Supplier = nilIfEmpty(input.Supplier)
	p.Location = input.Location
	p.Rack = nilIfEmpty(input.Rack)
	p.Row = nilIfEmpty(input.Row)
	p.Bin = nilIfEmpty(input.Bin)
	p.Notes = nilIfEmpty(input.Notes)
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	uc.auditor.Record(ctx, audit.Event{
		EntityType: "part",
		EntityID:   p.PartNumber,
		Action:     model.AuditActionUpdate,
		Actor:      input.Actor,
		Before:     before,
		After:      p,
	})

	go uc.invalidateListCache(context.Background())
	return p, nil
}

func (uc *partUseCase) DeactivatePart(ctx context.Context, partNumber, actor string) error {
	return uc.setStatus(ctx, partNumber, actor, model.PartStatusInactive)
}

func (uc *partUseCase) ReactivatePart(ctx context.Context, partNumber, actor string) error {
	return uc.setStatus(ctx, partNumber, actor, model.PartStatusActive)
}

func (uc *partUseCase) setStatus(ctx context.Context, partNumber, actor string, status model.PartStatus) error {
	p, err := uc.repo.FindByPartNumber(ctx, partNumber)
	if err != nil {
		return err
	}
	if p == nil {
		return &part.NotFoundError{PartNumber: partNumber}
	}
	if p.Status == status {
		return nil
	}

	before := *p
	p.Status = status
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p); err != nil {
		return err
	}

	uc.logger.Info("changed part status",
		zap.String("part_number", partNumber),
		zap.String("status", string(status)),
	)
	uc.auditor.Record(ctx, audit.Event{
		EntityType: "part",
		EntityID:   partNumber,
		Action:     model.AuditActionUpdate,
		Actor:      actor,
		Before:     before,
		After:      p,
	})

	go uc.invalidateListCache(context.Background())
	return nil
}

// DeletePart removes a part outright, but only while nothing in the ledger or
// usage history references it. Parts with history are deactivated instead.
func (uc *partUseCase) DeletePart(ctx context.Context, partNumber, actor string) error {
	p, err := uc.repo.FindByPartNumber(ctx, partNumber)
	if err != nil {
		return err
	}
	if p == nil {
		return &part.NotFoundError{PartNumber: partNumber}
	}

	referenced, err := uc.repo.HasHistory(ctx, partNumber)
	if err != nil {
		return err
	}
	if referenced {
		return &part.ReferencedError{PartNumber: partNumber}
	}

	if err := uc.repo.Delete(ctx, partNumber); err != nil {
		return err
	}

	uc.logger.Info("deleted part", zap.String("part_number", partNumber))
	uc.auditor.Record(ctx, audit.Event{
		EntityType: "part",
		EntityID:   partNumber,
		Action:     model.AuditActionDelete,
		Actor:      actor,
		Before:     p,
	})

	go uc.invalidateListCache(context.Background())
	return nil
}

func (uc *partUseCase) LowStock(ctx context.Context) ([]dto.LowStockPart, error) {
	return uc.repo.LowStock(ctx)
}

func (uc *partUseCase) Summary(ctx context.Context) (*dto.StockSummary, error) {
	return uc.repo.Summary(ctx)
}
