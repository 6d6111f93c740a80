package app

import (
	"sync"
	"time"

	"farmacia/internal/render"
)

// DefaultNoticeTTL время показа баннера с ошибкой
const DefaultNoticeTTL = 5 * time.Second

// Banner хранит текущее сообщение пользователю.
// Ошибки запросов гаснут сами через ttl, блокирующие висят до Dismiss.
type Banner struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	current *render.Notice
}

func NewBanner(ttl time.Duration) *Banner {
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &Banner{ttl: ttl, now: time.Now}
}

// Flash shows a transient error message.
func (b *Banner) Flash(msg string) render.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := render.Notice{Kind: render.NoticeError, Message: msg, ExpiresAt: b.now().Add(b.ttl)}
	b.current = &n
	return n
}

// Block shows a notice that stays until dismissed.
func (b *Banner) Block(kind render.NoticeKind, msg string) render.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := render.Notice{Kind: kind, Message: msg, Blocking: true}
	b.current = &n
	return n
}

func (b *Banner) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
}

// Current returns the visible notice, dropping an expired one.
func (b *Banner) Current() (render.Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return render.Notice{}, false
	}
	if !b.current.Blocking && !b.now().Before(b.current.ExpiresAt) {
		b.current = nil
		return render.Notice{}, false
	}
	return *b.current, true
}
