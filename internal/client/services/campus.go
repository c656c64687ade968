package services

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/campuslink/internal/client/api"
	"github.com/dmitrijs2005/campuslink/internal/client/models"
	"github.com/dmitrijs2005/campuslink/internal/logging"
)

// CampusService serves the read-side views: courses, assignments, grades,
// materials, and the unread-message count the background watcher polls.
type CampusService interface {
	Courses(ctx context.Context) ([]models.Course, error)
	Assignments(ctx context.Context) ([]models.Assignment, error)
	Grades(ctx context.Context) ([]models.Grade, error)
	Materials(ctx context.Context) ([]models.Material, error)
	UnreadCount(ctx context.Context) (int, error)
}

type campusService struct {
	client api.Client
	log    logging.Logger
}

func NewCampusService(client api.Client, log logging.Logger) CampusService {
	return &campusService{client: client, log: log.With("component", "campus")}
}

func (c *campusService) Courses(ctx context.Context) ([]models.Course, error) {
	return c.client.Courses(ctx)
}

// Assignments returns the user's assignments ordered by due date, nearest
// deadline first.
func (c *campusService) Assignments(ctx context.Context) ([]models.Assignment, error) {
	items, err := c.client.Assignments(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DueDate.Before(items[j].DueDate)
	})
	return items, nil
}

func (c *campusService) Grades(ctx context.Context) ([]models.Grade, error) {
	return c.client.Grades(ctx)
}

func (c *campusService) Materials(ctx context.Context) ([]models.Material, error) {
	return c.client.Materials(ctx)
}

func (c *campusService) UnreadCount(ctx context.Context) (int, error) {
	return c.client.UnreadCount(ctx)
}

// WeightedAverage computes the credit-weighted average score over grades.
// Courses with zero or negative credits are skipped; an empty or fully
// skipped list yields 0.
func WeightedAverage(grades []models.Grade) float64 {
	var sum, weight float64
	for _, g := range grades {
		if g.Credits <= 0 {
			continue
		}
		sum += g.Score * float64(g.Credits)
		weight += float64(g.Credits)
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}
