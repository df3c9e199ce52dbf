package cache

import (
	"context"
	"encoding/json"
	"time"

	"propertyhub.app/config"
	"propertyhub.app/errors"
	"propertyhub.app/models"
	"propertyhub.app/pkg/logger"
)

const (
	// ReportTTL bounds how long a cached report snapshot is served before
	// readers fall back to the primary store. It is the fallback when no
	// TTL is configured.
	ReportTTL = 300 * time.Second

	// CommentListTTL is refreshed on every append.
	CommentListTTL = 300 * time.Second

	defaultCommentPageSize = 10
)

// ReportCache caches report snapshots and their paginated comment lists.
// The cache is never the source of truth: a miss always means "ask the
// primary store", and repopulating after a miss is the caller's decision.
type ReportCache struct {
	store *Store
	log   *logger.Logger

	reportTTL  time.Duration
	commentTTL time.Duration
}

// NewReportCache creates a report cache over the given store. TTLs come
// from cacheCfg; a nil cacheCfg falls back to the package constants.
func NewReportCache(store *Store, cacheCfg *config.CacheConfig, log *logger.Logger) *ReportCache {
	c := &ReportCache{
		store:      store,
		log:        log.ForComponent("reportCache"),
		reportTTL:  ReportTTL,
		commentTTL: CommentListTTL,
	}
	if cacheCfg != nil {
		if cacheCfg.ReportTTLSeconds > 0 {
			c.reportTTL = time.Duration(cacheCfg.ReportTTLSeconds) * time.Second
		}
		if cacheCfg.CommentTTLSeconds > 0 {
			c.commentTTL = time.Duration(cacheCfg.CommentTTLSeconds) * time.Second
		}
	}
	return c
}

// PutReport caches a snapshot of the report under reports:{id}. The comment
// list is stripped before serialization; comments live in their own list
// key and would only go stale inside the snapshot.
func (c *ReportCache) PutReport(ctx context.Context, report *models.Report, ttl time.Duration) error {
	if report == nil {
		return errors.NewValidationError("report cannot be nil")
	}
	if report.ID == "" {
		return errors.NewValidationError("report id cannot be empty")
	}
	if ttl <= 0 {
		ttl = c.reportTTL
	}

	snapshot := *report
	snapshot.Comments = []models.Comment{}

	data, err := json.Marshal(&snapshot)
	if err != nil {
		return errors.NewCacheError("failed to serialize report", err)
	}

	return c.store.SetString(ctx, GenerateKey(KindReport, report.ID), string(data), ttl)
}

// GetReport returns the cached report or nil on a miss. Callers must fall
// back to the primary store when nil is returned.
func (c *ReportCache) GetReport(ctx context.Context, id string) (*models.Report, error) {
	if id == "" {
		return nil, errors.NewValidationError("report id cannot be empty")
	}

	data, found, err := c.store.GetString(ctx, GenerateKey(KindReport, id))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var report models.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		c.log.Error("cached report unreadable", "error", err, "reportId", id)
		return nil, errors.NewCacheError("failed to deserialize report", err)
	}

	return &report, nil
}

// InvalidateReport drops the cached snapshot, forcing the next read through
// to the primary store.
func (c *ReportCache) InvalidateReport(ctx context.Context, id string) error {
	if id == "" {
		return errors.NewValidationError("report id cannot be empty")
	}
	return c.store.Delete(ctx, GenerateKey(KindReport, id))
}

// AppendComment pushes a comment onto the report's comment list and
// refreshes the list TTL. The returned bool reports whether the append took
// effect: when the key already holds an incompatible structure the append
// degrades to a no-op instead of failing the request, since the list is a
// best-effort enhancement over the primary store.
func (c *ReportCache) AppendComment(ctx context.Context, reportID string, comment *models.Comment) (bool, error) {
	if reportID == "" {
		return false, errors.NewValidationError("report id cannot be empty")
	}
	if comment == nil || comment.Text == "" {
		return false, errors.NewValidationError("comment text cannot be empty")
	}

	data, err := json.Marshal(comment)
	if err != nil {
		return false, errors.NewCacheError("failed to serialize comment", err)
	}

	key := GenerateKey(KindReportComments, reportID)
	if err := c.store.AppendToList(ctx, key, string(data), c.commentTTL); err != nil {
		if errors.IsWrongTypeError(err) {
			c.log.Warn("comment list key holds wrong type, skipping append", "reportId", reportID)
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// GetComments returns one page of the report's comments in append order.
// Page numbering starts at 1. A missing list yields an empty slice; a
// wrong-type key or an unreadable element degrades the page to a miss the
// same way appends do.
func (c *ReportCache) GetComments(ctx context.Context, reportID string, page, pageSize int) ([]models.Comment, error) {
	if reportID == "" {
		return nil, errors.NewValidationError("report id cannot be empty")
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultCommentPageSize
	}

	start := int64((page - 1) * pageSize)
	end := start + int64(pageSize) - 1

	key := GenerateKey(KindReportComments, reportID)
	raw, err := c.store.GetListRange(ctx, key, start, end)
	if err != nil {
		if errors.IsWrongTypeError(err) {
			c.log.Warn("comment list key holds wrong type, returning empty page", "reportId", reportID)
			return []models.Comment{}, nil
		}
		return nil, err
	}

	comments := make([]models.Comment, 0, len(raw))
	for _, item := range raw {
		var comment models.Comment
		if err := json.Unmarshal([]byte(item), &comment); err != nil {
			// Skipping the element would shrink the page below its
			// window, so the whole page degrades to a miss instead.
			c.log.Error("cached comment unreadable, degrading page to miss", "error", err, "reportId", reportID)
			return []models.Comment{}, nil
		}
		comments = append(comments, comment)
	}

	return comments, nil
}
