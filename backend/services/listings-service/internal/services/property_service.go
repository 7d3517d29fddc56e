package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/managementproperties/mono-repo/backend/services/listings-service/internal/dtos"
	"github.com/managementproperties/mono-repo/backend/shared/go-middleware"
	"github.com/managementproperties/mono-repo/backend/shared/go-models"
	"github.com/managementproperties/mono-repo/backend/shared/go-repositories"
	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

var validate = validator.New()

// propertyInput is the part of a payload that has a closed set of values.
// Empty strings are absent fields.
type propertyInput struct {
	Status        string  `validate:"omitempty,oneof=rent sale commercial"`
	PriceUnit     string  `validate:"omitempty,oneof=pcm pa"`
	SalePriceUnit string  `validate:"omitempty,oneof='Guide Price' 'Fixed Price' 'Offers Over' OIEO OIRO 'Starting Bid'"`
	Availability  string  `validate:"omitempty,oneof=LET SOLD 'SALE AGREED'"`
	Price         float64 `validate:"gte=0"`
	Beds          int     `validate:"gte=0"`
	Baths         int     `validate:"gte=0"`
}

type PropertyService struct {
	repo repositories.PropertyRepository
}

func NewPropertyService(repo repositories.PropertyRepository) *PropertyService {
	return &PropertyService{repo: repo}
}

// List returns listings newest first. Only active listings unless
// includeInactive.
func (s *PropertyService) List(ctx context.Context, includeInactive bool) ([]models.Property, error) {
	list, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, utils.NewUpstreamError("Failed to fetch properties", err)
	}
	for i := range list {
		list[i] = models.ApplyUnitPrecedence(list[i])
	}
	return list, nil
}

func (s *PropertyService) Create(ctx context.Context, req dtos.PropertyPayload) (int64, error) {
	if strings.TrimSpace(utils.Val(req.Title)) == "" || req.Price == nil || *req.Price == 0 ||
		strings.TrimSpace(utils.Val(req.Status)) == "" || strings.TrimSpace(utils.Val(req.PriceUnit)) == "" {
		return 0, utils.NewClientError(utils.ErrCodeMissingFields, utils.ErrMissingFields.Error(), utils.ErrMissingFields)
	}

	fields, err := toFields(req)
	if err != nil {
		return 0, err
	}
	// Creation always starts visible.
	fields.Active = utils.Ptr(true)

	id, err := s.repo.Create(ctx, fields)
	if err != nil {
		return 0, utils.NewUpstreamError("Failed to create property", err)
	}
	propertyLog(ctx, id).Info("Property created")
	return id, nil
}

// Replace writes every field present in req onto the stored listing.
func (s *PropertyService) Replace(ctx context.Context, id int64, req dtos.PropertyPayload) error {
	if id == 0 {
		return missingIDError()
	}
	fields, err := toFields(req)
	if err != nil {
		return err
	}
	// Visibility only changes through SetActive.
	fields.Active = nil

	if err := s.repo.Replace(ctx, id, fields); err != nil {
		return mapRepoError(ctx, id, "Failed to update property", err)
	}
	propertyLog(ctx, id).Info("Property updated")
	return nil
}

// SetActive shows or hides a listing without touching anything else.
func (s *PropertyService) SetActive(ctx context.Context, id int64, active bool) error {
	if id == 0 {
		return missingIDError()
	}
	if err := s.repo.PatchActive(ctx, id, active); err != nil {
		return mapRepoError(ctx, id, "Failed to update property", err)
	}
	propertyLog(ctx, id).Infof("Property active=%t", active)
	return nil
}

// Delete removes a listing for good. Hiding is done with SetActive.
func (s *PropertyService) Delete(ctx context.Context, id int64) error {
	if id == 0 {
		return missingIDError()
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(ctx, id, "Failed to delete property", err)
	}
	propertyLog(ctx, id).Info("Property deleted")
	return nil
}

func (s *PropertyService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// toFields validates req and converts it to a partial write. Only fields the
// client sent are set.
func toFields(req dtos.PropertyPayload) (models.PropertyFields, error) {
	f := models.PropertyFields{
		Title:         trimmed(req.Title),
		Address:       trimmed(req.Address),
		Area:          trimmed(req.Area),
		Price:         req.Price.Float(),
		PriceUnit:     lowered(req.PriceUnit),
		SalePriceUnit: trimmed(req.SalePriceUnit),
		Status:        lowered(req.Status),
		Availability:  uppered(req.Availability),
		Beds:          req.Beds.Int(),
		Baths:         req.Baths.Int(),
		Featured:      req.Featured,
		Description:   req.Description,
		Active:        req.Active,
	}

	// A listing never loses these once it has them.
	var blank []string
	for _, c := range []struct {
		name string
		v    *string
	}{{"title", f.Title}, {"status", f.Status}, {"priceUnit", f.PriceUnit}} {
		if c.v != nil && *c.v == "" {
			blank = append(blank, c.name)
		}
	}
	if len(blank) > 0 {
		return f, utils.NewClientError(utils.ErrCodeValidation, "must not be blank: "+strings.Join(blank, ", "), nil)
	}

	if req.Coord != nil {
		if len(req.Coord) != 2 {
			return f, utils.NewClientError(utils.ErrCodeValidation, "coord must be [lat, lng]", nil)
		}
		f.Lat = utils.Ptr(req.Coord[0])
		f.Lng = utils.Ptr(req.Coord[1])
	}
	if req.Images != nil {
		images := models.ResolveImages(*req.Images)
		f.Images = &images
	}

	in := propertyInput{
		Status:        utils.Val(f.Status),
		PriceUnit:     utils.Val(f.PriceUnit),
		SalePriceUnit: utils.Val(f.SalePriceUnit),
		Availability:  utils.Val(f.Availability),
		Price:         utils.Val(f.Price),
		Beds:          utils.Val(f.Beds),
		Baths:         utils.Val(f.Baths),
	}
	if err := validate.Struct(in); err != nil {
		return f, utils.NewClientError(utils.ErrCodeValidation, validationMessage(err), err)
	}
	if in.Status == string(models.StatusRent) && in.SalePriceUnit != "" {
		return f, utils.NewClientError(utils.ErrCodeValidation, "salePriceUnit does not apply to rent listings", nil)
	}
	return f, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid property"
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, jsonName(fe.Field()))
	}
	return "invalid value for: " + strings.Join(names, ", ")
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func mapRepoError(ctx context.Context, id int64, msg string, err error) error {
	if errors.Is(err, repositories.ErrPropertyNotFound) {
		return utils.NewNotFoundError("property not found", err)
	}
	propertyLog(ctx, id).WithError(err).Error(msg)
	return utils.NewUpstreamError(msg, err)
}

// propertyLog tags a log line with the listing and the request that touched it.
func propertyLog(ctx context.Context, id int64) *logrus.Entry {
	return utils.Logger.WithFields(logrus.Fields{
		"property_id": id,
		"request_id":  middleware.RequestID(ctx),
	})
}

func missingIDError() error {
	return &utils.AppError{
		StatusCode: http.StatusBadRequest,
		Code:       utils.ErrCodeMissingID,
		Message:    utils.ErrMissingID.Error(),
		Err:        utils.ErrMissingID,
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	return utils.Ptr(strings.TrimSpace(*s))
}

func lowered(s *string) *string {
	if s == nil {
		return nil
	}
	return utils.Ptr(strings.ToLower(strings.TrimSpace(*s)))
}

func uppered(s *string) *string {
	if s == nil {
		return nil
	}
	return utils.Ptr(strings.ToUpper(strings.TrimSpace(*s)))
}
