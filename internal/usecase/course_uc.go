package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/access"
	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/domain/ports/adapter"
	"edu-subscription-platform/internal/domain/ports/repository"
	"edu-subscription-platform/internal/infra/logging"
	"edu-subscription-platform/internal/infra/metrics"
)

var _ CourseUseCase = (*courseUC)(nil)

// CourseUseCase holds the three premium checkpoints. The viewer may be nil
// for anonymous requests. Entitlement is evaluated on every call.
type CourseUseCase interface {
	List(ctx context.Context, viewer *model.User, f model.CourseFilter) ([]*model.Course, error)
	Get(ctx context.Context, viewer *model.User, courseID string) (*model.Course, error)
	StreamVideo(ctx context.Context, viewer *model.User, courseID, videoID string) (*StreamLink, error)
}

type StreamLink struct {
	VideoID   string    `json:"video_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type courseUC struct {
	courses repository.CourseRepository
	content adapter.ContentStore
	urlTTL  time.Duration
	now     func() time.Time
	log     *zerolog.Logger
}

func NewCourseUseCase(courses repository.CourseRepository, content adapter.ContentStore, urlTTL time.Duration, logger *zerolog.Logger) *courseUC {
	if logger == nil {
		logger = logging.Nop()
	}
	if urlTTL <= 0 {
		urlTTL = 15 * time.Minute
	}
	return &courseUC{courses: courses, content: content, urlTTL: urlTTL, now: time.Now, log: logger}
}

// List drops premium courses the viewer cannot open.
func (u *courseUC) List(ctx context.Context, viewer *model.User, f model.CourseFilter) ([]*model.Course, error) {
	all, err := u.courses.List(ctx, repository.NoTX, f)
	if err != nil {
		return nil, err
	}
	entitled := access.HasPremiumAccess(viewer, u.now())
	out := make([]*model.Course, 0, len(all))
	hidden := 0
	for _, c := range all {
		if c.IsPremium && !entitled {
			hidden++
			continue
		}
		out = append(out, c)
	}
	if hidden > 0 {
		metrics.IncAccessDecision("list", false)
	}
	return out, nil
}

func (u *courseUC) Get(ctx context.Context, viewer *model.User, courseID string) (*model.Course, error) {
	c, err := u.courses.FindByID(ctx, repository.NoTX, courseID)
	if err != nil {
		return nil, err
	}
	if err := u.gate(ctx, "get", viewer, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (u *courseUC) StreamVideo(ctx context.Context, viewer *model.User, courseID, videoID string) (*StreamLink, error) {
	c, err := u.courses.FindByID(ctx, repository.NoTX, courseID)
	if err != nil {
		return nil, err
	}
	if err := u.gate(ctx, "stream", viewer, c); err != nil {
		return nil, err
	}
	v, ok := c.Video(videoID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.content == nil {
		return nil, domain.ErrUnconfigured
	}
	url, err := u.content.StreamURL(ctx, v.StorageKey, u.urlTTL)
	if err != nil {
		return nil, err
	}
	return &StreamLink{VideoID: v.ID, URL: url, ExpiresAt: u.now().Add(u.urlTTL)}, nil
}

func (u *courseUC) gate(ctx context.Context, checkpoint string, viewer *model.User, c *model.Course) error {
	if !c.IsPremium {
		return nil
	}
	allowed := access.CanView(viewer, c, u.now())
	metrics.IncAccessDecision(checkpoint, allowed)
	if !allowed {
		logging.With(ctx, u.log).Debug().Str("course_id", c.ID).Str("checkpoint", checkpoint).Msg("premium content denied")
		return domain.ErrForbidden
	}
	return nil
}
