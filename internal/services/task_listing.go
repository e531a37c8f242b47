package services

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"crmmvp/internal/models"
)

// ApplyTaskListSettings filters and orders tasks the way the task page does.
// Inactive settings return tasks untouched.
func ApplyTaskListSettings(tasks []models.Task, s models.TaskListSettings) []models.Task {
	if !s.Active {
		return tasks
	}
	needle := strings.ToLower(strings.TrimSpace(s.ClientName))

	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == models.StatusDeleted {
			continue
		}
		if t.Status == models.StatusClosed && !s.ShowClosed {
			continue
		}
		if s.Type != "" && t.Type != s.Type {
			continue
		}
		if s.Priority != "" && t.Priority != s.Priority {
			continue
		}
		if needle != "" {
			name := ""
			if t.Client != nil {
				name = t.Client.Name
			}
			if !strings.Contains(strings.ToLower(name), needle) {
				continue
			}
		}
		out = append(out, t)
	}

	asc := s.SortOrder == models.SortAsc
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ParseTaskListSettings reads type, priority, client, showClosed and sort.
// "ALL" is treated as no filter.
func ParseTaskListSettings(q url.Values) (models.TaskListSettings, error) {
	var s models.TaskListSettings
	for _, k := range []string{"type", "priority", "client", "showClosed", "sort"} {
		if q.Has(k) {
			s.Active = true
		}
	}
	if v := q.Get("type"); v != "" && v != "ALL" {
		s.Type = models.TaskType(strings.ToUpper(v))
		if !s.Type.Valid() {
			return s, ErrInvalidInput
		}
	}
	if v := q.Get("priority"); v != "" && v != "ALL" {
		s.Priority = models.TaskPriority(strings.ToUpper(v))
		if !s.Priority.Valid() {
			return s, ErrInvalidInput
		}
	}
	s.ClientName = q.Get("client")
	if v := q.Get("showClosed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s, ErrInvalidInput
		}
		s.ShowClosed = b
	}
	order, err := parseSortOrder(q.Get("sort"))
	if err != nil {
		return s, err
	}
	s.SortOrder = order
	return s, nil
}

// ParseFeedListSettings reads type, status and sort.
func ParseFeedListSettings(q url.Values) (models.FeedListSettings, error) {
	var s models.FeedListSettings
	if v := q.Get("type"); v != "" && v != "ALL" {
		s.Type = models.FeedType(strings.ToUpper(v))
		if !s.Type.Valid() {
			return s, ErrInvalidInput
		}
	}
	if v := q.Get("status"); v != "" && v != "ALL" {
		s.Status = models.FeedStatus(strings.ToUpper(v))
		if !s.Status.Valid() {
			return s, ErrInvalidInput
		}
	}
	order, err := parseSortOrder(q.Get("sort"))
	if err != nil {
		return s, err
	}
	s.SortOrder = order
	return s, nil
}

func parseSortOrder(v string) (models.SortOrder, error) {
	switch strings.ToLower(v) {
	case "":
		return models.SortDesc, nil
	case string(models.SortAsc):
		return models.SortAsc, nil
	case string(models.SortDesc):
		return models.SortDesc, nil
	}
	return "", ErrInvalidInput
}
