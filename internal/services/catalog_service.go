package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	dayStartHour = 9
	dayEndHour   = 18
	slotLayout   = "3:04 PM"
)

type CatalogService struct {
	db            *gorm.DB
	horizonMonths int
	now           func() time.Time
}

func NewCatalogService(db *gorm.DB, horizonMonths int) *CatalogService {
	if horizonMonths < 1 {
		horizonMonths = 3
	}
	return &CatalogService{db: db, horizonMonths: horizonMonths, now: time.Now}
}

type CreateServiceInput struct {
	Name        string
	Price       decimal.Decimal
	Media       []string
	Description string
	Category    string
}

// CreateService stores the service together with its availability calendar
// up to the configured horizon.
func (s *CatalogService) CreateService(ctx context.Context, in CreateServiceInput) (*models.Service, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, validationf("service name is required")
	}
	if !in.Price.IsPositive() {
		return nil, validationf("service price must be positive")
	}
	if in.Media == nil {
		in.Media = []string{}
	}
	media, err := json.Marshal(in.Media)
	if err != nil {
		return nil, validationf("invalid media list")
	}

	svc := models.Service{
		Name:        in.Name,
		Price:       in.Price.Round(2),
		Media:       datatypes.JSON(media),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
	}

	var days int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&svc).Error; err != nil {
			return dbError("create service", err)
		}
		start := DateOnly(s.now())
		n, err := s.fillCalendar(tx, svc.ID, start)
		days = n
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("service created", "service_id", svc.ID.String(), "availability_days", days)
	return &svc, nil
}

// ExtendAvailability tops every service's calendar up to the horizon.
func (s *CatalogService) ExtendAvailability(ctx context.Context) (int, error) {
	var ids []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Service{}).Pluck("id", &ids).Error; err != nil {
		return 0, dbError("list services", err)
	}

	today := DateOnly(s.now())
	total := 0
	for _, id := range ids {
		var last []models.Availability
		if err := s.db.WithContext(ctx).Where("service_id = ?", id).
			Order("date DESC").Limit(1).Find(&last).Error; err != nil {
			return total, dbError("load calendar", err)
		}
		from := today
		if len(last) > 0 {
			if next := DateOnly(last[0].Date).AddDate(0, 0, 1); next.After(from) {
				from = next
			}
		}

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			n, err := s.fillCalendar(tx, id, from)
			total += n
			return err
		})
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// fillCalendar creates one Availability per day from start up to the horizon.
// Sundays are closed and carry no slots.
func (s *CatalogService) fillCalendar(tx *gorm.DB, serviceID uuid.UUID, start time.Time) (int, error) {
	end := DateOnly(s.now()).AddDate(0, s.horizonMonths, 0)
	var days []models.Availability
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		a := models.Availability{
			ID:         uuid.New(),
			ServiceID:  serviceID,
			Date:       d,
			IsBookable: d.Weekday() != time.Sunday,
		}
		if a.IsBookable {
			a.TimeSlots = workingDaySlots(d)
		}
		days = append(days, a)
	}
	if len(days) == 0 {
		return 0, nil
	}
	if err := tx.CreateInBatches(&days, 50).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, validationf("availability already exists for this period")
		}
		return 0, dbError("create availability", err)
	}
	return len(days), nil
}

func workingDaySlots(day time.Time) []models.TimeSlot {
	slots := make([]models.TimeSlot, 0, dayEndHour-dayStartHour)
	for h := dayStartHour; h < dayEndHour; h++ {
		from := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, time.UTC)
		slots = append(slots, models.TimeSlot{
			StartTime: from.Format(slotLayout),
			EndTime:   from.Add(time.Hour).Format(slotLayout),
			Status:    models.TimeSlotAvailable,
			Position:  h - dayStartHour,
		})
	}
	return slots
}

func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var svc models.Service
	err := s.db.WithContext(ctx).First(&svc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("service")
	}
	if err != nil {
		return nil, dbError("load service", err)
	}
	return &svc, nil
}

func (s *CatalogService) ListServices(ctx context.Context, category string) ([]models.Service, error) {
	q := s.db.WithContext(ctx).Order("name ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []models.Service
	if err := q.Find(&out).Error; err != nil {
		return nil, dbError("list services", err)
	}
	return out, nil
}

// GetAvailability returns calendar days in [from, to] with their slots.
func (s *CatalogService) GetAvailability(ctx context.Context, serviceID uuid.UUID, from, to time.Time) ([]models.Availability, error) {
	from, to = DateOnly(from), DateOnly(to)
	if to.Before(from) {
		return nil, validationf("end date is before start date")
	}
	if to.Sub(from) > 92*24*time.Hour {
		return nil, validationf("date range must not exceed 92 days")
	}
	if _, err := s.GetService(ctx, serviceID); err != nil {
		return nil, err
	}

	var days []models.Availability
	err := s.db.WithContext(ctx).
		Preload("TimeSlots", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("service_id = ? AND date >= ? AND date <= ?", serviceID, from, to).
		Order("date ASC").Find(&days).Error
	if err != nil {
		return nil, dbError("load availability", err)
	}
	return days, nil
}

// SetSlotBlocked toggles a slot between AVAILABLE and BLOCKED. Booked slots
// are left alone.
func (s *CatalogService) SetSlotBlocked(ctx context.Context, slotID uuid.UUID, blocked bool) (*models.TimeSlot, error) {
	from, to := models.TimeSlotAvailable, models.TimeSlotBlocked
	if !blocked {
		from, to = to, from
	}

	var slot models.TimeSlot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&slot, "id = ?", slotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("time slot")
			}
			return dbError("load time slot", err)
		}
		if slot.Status == to {
			return nil
		}
		res := tx.Model(&models.TimeSlot{}).Where("id = ? AND status = ?", slotID, from).Update("status", to)
		if res.Error != nil {
			return dbError("update time slot", res.Error)
		}
		if res.RowsAffected == 0 {
			return validationf("time slot is %s", strings.ToLower(string(slot.Status)))
		}
		slot.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &slot, nil
}
