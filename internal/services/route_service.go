package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/polarisid/smartos-sub000/internal/cache"
	"github.com/polarisid/smartos-sub000/internal/completion"
	"github.com/polarisid/smartos-sub000/internal/metrics"
	"github.com/polarisid/smartos-sub000/internal/models"
	"github.com/polarisid/smartos-sub000/internal/repositories"
	"github.com/polarisid/smartos-sub000/internal/routeimport"
)

var (
	ErrRouteNotFound    = errors.New("route not found")
	ErrStopNotFound     = errors.New("stop not found")
	ErrPartNotFound     = errors.New("part not found")
	ErrNoStops          = errors.New("no stops found in pasted text")
	ErrDuplicateOrder   = errors.New("order id listed more than once")
	ErrInvalidRouteType = errors.New("route type must be 'urban' or 'regional'")
	ErrInvalidTag       = errors.New("stop tag must be 'standard', 'pickup' or 'delivery'")
	ErrInvalidRoute     = errors.New("route name is required")
	ErrRouteBusy        = errors.New("route is being edited, try again")
)

// RouteStore persists routes
type RouteStore interface {
	Create(ctx context.Context, route *models.Route) error
	Get(ctx context.Context, id int) (*models.Route, error)
	List(ctx context.Context, active *bool) ([]*models.Route, error)
	Update(ctx context.Context, route *models.Route) error
	SetActive(ctx context.Context, id int, active bool) error
	Delete(ctx context.Context, id int) error
}

// OrderLog reads the service order log
type OrderLog interface {
	ListByOrderIDs(ctx context.Context, orderIDs []string) ([]models.ServiceOrder, error)
	LatestSince(ctx context.Context, orderID string, since time.Time) (*models.ServiceOrder, error)
}

// Locker serializes read-modify-write cycles on one route
type Locker interface {
	Acquire(ctx context.Context, routeID int) (func(), error)
}

type RouteService struct {
	Routes   RouteStore
	Orders   OrderLog
	Locks    Locker
	cacheTTL time.Duration
	log      *logrus.Entry
}

func NewRouteService(routes RouteStore, orders OrderLog, locks Locker) *RouteService {
	return &RouteService{
		Routes:   routes,
		Orders:   orders,
		Locks:    locks,
		cacheTTL: 5 * time.Minute,
		log:      logrus.WithField("component", "route_service"),
	}
}

// SetCacheTTL sets how long a route read stays in Redis
func (s *RouteService) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

// Preview parses pasted text without saving anything
func (s *RouteService) Preview(text string) models.ImportPreview {
	res := s.parse(text)
	return models.ImportPreview{
		Stops:      res.Stops,
		Rows:       res.Rows,
		Skipped:    res.Skipped,
		Duplicates: routeimport.DuplicateOrderIDs(res.Stops),
	}
}

func (s *RouteService) parse(text string) routeimport.Result {
	res := routeimport.Parse(text)
	metrics.ImportRows.WithLabelValues("parsed").Add(float64(len(res.Stops)))
	metrics.ImportRows.WithLabelValues("skipped").Add(float64(res.Skipped))
	return res
}

// parseStops parses text for saving; it requires at least one stop and unique order ids
func (s *RouteService) parseStops(text string) ([]models.Stop, error) {
	res := s.parse(text)
	if len(res.Stops) == 0 {
		return nil, ErrNoStops
	}
	if dups := routeimport.DuplicateOrderIDs(res.Stops); len(dups) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateOrder, strings.Join(dups, ", "))
	}
	return res.Stops, nil
}

func validateMetadata(m *models.RouteMetadata) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return ErrInvalidRoute
	}
	if m.RouteType == "" {
		m.RouteType = models.RouteTypeUrban
	}
	if !m.RouteType.Valid() {
		return ErrInvalidRouteType
	}
	m.VehiclePlate = strings.ToUpper(strings.TrimSpace(m.VehiclePlate))
	return nil
}

func applyMetadata(route *models.Route, m models.RouteMetadata) {
	route.Name = m.Name
	route.TechnicianID = m.TechnicianID
	route.TechnicianName = m.TechnicianName
	route.DepartureDate = m.DepartureDate
	route.ArrivalDate = m.ArrivalDate
	route.RouteType = m.RouteType
	route.VehiclePlate = m.VehiclePlate
}

// CreateRoute saves a new active route from pasted text
func (s *RouteService) CreateRoute(ctx context.Context, req *models.CreateRouteRequest) (*models.Route, error) {
	if err := validateMetadata(&req.RouteMetadata); err != nil {
		return nil, err
	}
	stops, err := s.parseStops(req.Text)
	if err != nil {
		return nil, err
	}

	route := &models.Route{Active: true, Stops: stops}
	applyMetadata(route, req.RouteMetadata)

	if err := s.Routes.Create(ctx, route); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	cache.InvalidateRouteCaches(ctx, route.ID)

	s.log.WithFields(logrus.Fields{
		"route_id": route.ID,
		"stops":    len(route.Stops),
	}).Info("Route created")
	return route, nil
}

func (s *RouteService) GetRoute(ctx context.Context, id int) (*models.Route, error) {
	if data, ok := cache.GetCached(ctx, cache.RouteKey(id)); ok {
		var route models.Route
		if err := json.Unmarshal(data, &route); err == nil {
			return &route, nil
		}
	}

	route, err := s.Routes.Get(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrRouteNotFound
	}
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(route); err == nil {
		cache.SetCached(ctx, cache.RouteKey(id), data, s.cacheTTL)
	}
	return route, nil
}

func (s *RouteService) ListRoutes(ctx context.Context, active *bool) ([]*models.Route, error) {
	filter := "all"
	if active != nil {
		filter = strconv.FormatBool(*active)
	}
	key := fmt.Sprintf(cache.RouteListKey, filter)

	if data, ok := cache.GetCached(ctx, key); ok {
		var routes []*models.Route
		if err := json.Unmarshal(data, &routes); err == nil {
			return routes, nil
		}
	}

	routes, err := s.Routes.List(ctx, active)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(routes); err == nil {
		cache.SetCached(ctx, key, data, s.cacheTTL)
	}
	return routes, nil
}

// UpdateRoute applies an edit. Non-blank text is parsed again and merged with the
// saved stops so tracking codes and stop tags entered by operators survive; blank
// text keeps the saved stops and only updates metadata.
func (s *RouteService) UpdateRoute(ctx context.Context, id int, req *models.UpdateRouteRequest) (*models.Route, error) {
	if err := validateMetadata(&req.RouteMetadata); err != nil {
		return nil, err
	}
	for orderID, tag := range req.Tags {
		if !tag.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTag, orderID)
		}
	}

	var next []models.Stop
	if strings.TrimSpace(req.Text) != "" {
		var err error
		if next, err = s.parseStops(req.Text); err != nil {
			return nil, err
		}
	}

	return s.mutate(ctx, id, func(route *models.Route) error {
		applyMetadata(route, req.RouteMetadata)
		if next != nil {
			route.Stops = routeimport.Merge(next, route.Stops, routeimport.TagOverrides(req.Tags))
			metrics.RouteMerges.WithLabelValues("ok").Inc()
		} else if len(req.Tags) > 0 {
			route.Stops = routeimport.Merge(route.Stops, route.Stops, routeimport.TagOverrides(req.Tags))
		}
		return nil
	})
}

// EditText renders the saved stops in the import format for the edit form
func (s *RouteService) EditText(ctx context.Context, id int) (string, error) {
	route, err := s.GetRoute(ctx, id)
	if err != nil {
		return "", err
	}
	return routeimport.Serialize(route.Stops), nil
}

// SetTrackingCode records the shipment tracking code of one part of one stop
func (s *RouteService) SetTrackingCode(ctx context.Context, id int, orderID, partCode, trackingCode string) (*models.Route, error) {
	trackingCode = strings.TrimSpace(trackingCode)
	return s.mutate(ctx, id, func(route *models.Route) error {
		stop := route.FindStop(orderID)
		if stop == nil {
			return ErrStopNotFound
		}
		for i := range stop.Parts {
			if stop.Parts[i].Code == partCode {
				stop.Parts[i].TrackingCode = trackingCode
				return nil
			}
		}
		return ErrPartNotFound
	})
}

// SetStopTag changes the classification of one stop
func (s *RouteService) SetStopTag(ctx context.Context, id int, orderID string, tag models.StopTag) (*models.Route, error) {
	if !tag.Valid() {
		return nil, ErrInvalidTag
	}
	return s.mutate(ctx, id, func(route *models.Route) error {
		stop := route.FindStop(orderID)
		if stop == nil {
			return ErrStopNotFound
		}
		stop.Tag = tag
		return nil
	})
}

// mutate runs fn on the saved route under the route lock and saves the result
func (s *RouteService) mutate(ctx context.Context, id int, fn func(*models.Route) error) (*models.Route, error) {
	release, err := s.Locks.Acquire(ctx, id)
	if errors.Is(err, cache.ErrLocked) {
		metrics.RouteMerges.WithLabelValues("busy").Inc()
		return nil, ErrRouteBusy
	}
	if err != nil {
		return nil, fmt.Errorf("lock route %d: %w", id, err)
	}
	defer release()

	route, err := s.Routes.Get(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrRouteNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := fn(route); err != nil {
		return nil, err
	}

	if err := s.Routes.Update(ctx, route); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("update route %d: %w", id, err)
	}
	cache.InvalidateRouteCaches(ctx, id)
	return route, nil
}

// FinalizeRoute closes a route; it stays stored and listed as inactive
func (s *RouteService) FinalizeRoute(ctx context.Context, id int) error {
	return s.setActive(ctx, id, false)
}

// ReopenRoute makes a finalized route active again
func (s *RouteService) ReopenRoute(ctx context.Context, id int) error {
	return s.setActive(ctx, id, true)
}

func (s *RouteService) setActive(ctx context.Context, id int, active bool) error {
	err := s.Routes.SetActive(ctx, id, active)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrRouteNotFound
	}
	if err != nil {
		return err
	}
	cache.InvalidateRouteCaches(ctx, id)
	s.log.WithFields(logrus.Fields{"route_id": id, "active": active}).Info("Route state changed")
	return nil
}

// DeleteRoute removes a route permanently
func (s *RouteService) DeleteRoute(ctx context.Context, id int) error {
	err := s.Routes.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrRouteNotFound
	}
	if err != nil {
		return err
	}
	cache.InvalidateRouteCaches(ctx, id)
	s.log.WithField("route_id", id).Info("Route deleted")
	return nil
}

// Progress evaluates every stop of a route against the service order log
func (s *RouteService) Progress(ctx context.Context, id int) (*models.RouteProgress, error) {
	route, err := s.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	orders, err := s.Orders.ListByOrderIDs(ctx, route.OrderIDs())
	if err != nil {
		return nil, fmt.Errorf("load service orders: %w", err)
	}
	progress := completion.Evaluate(route, orders)
	return &progress, nil
}
