package reaction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/lueurxax/shruggbot/internal/core/errors"
)

type stubTitles struct {
	title string
	err   error
	calls int
}

func (s *stubTitles) ResolveTitle(_ context.Context, _ string) (string, error) {
	s.calls++

	return s.title, s.err
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{text: "https://example.com", want: true},
		{text: "http://example.com/a?b=c", want: true},
		{text: "HTTPS://Example.com", want: true},
		{text: "example.com", want: false},
		{text: "ftp://example.com", want: false},
		{text: "https://", want: false},
		{text: "look at https://example.com", want: false},
		{text: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsURL(tt.text))
		})
	}
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		mode      Mode
		titles    *stubTitles
		want      string
		wantCalls int
	}{
		{
			name:      "general URL resolves to title",
			text:      "https://example.com",
			mode:      ModeGeneral,
			titles:    &stubTitles{title: "Example Domain"},
			want:      "Example Domain",
			wantCalls: 1,
		},
		{
			name:      "page without title yields sentinel",
			text:      "https://example.com",
			mode:      ModeGeneral,
			titles:    &stubTitles{err: apperrors.ErrNoTitle},
			want:      NoTitleSentinel,
			wantCalls: 1,
		},
		{
			name:      "fetch failure yields sentinel",
			text:      "https://example.com",
			mode:      ModeGeneral,
			titles:    &stubTitles{err: errors.New("connection refused")},
			want:      NoTitleSentinel,
			wantCalls: 1,
		},
		{
			name:      "blank title yields sentinel",
			text:      "https://example.com",
			mode:      ModeGeneral,
			titles:    &stubTitles{title: "   "},
			want:      NoTitleSentinel,
			wantCalls: 1,
		},
		{
			name:   "non general mode keeps URL",
			text:   "https://example.com",
			mode:   ModeCorporate,
			titles: &stubTitles{title: "Example Domain"},
			want:   "https://example.com",
		},
		{
			name:   "plain text unchanged",
			text:   "  Mondays  ",
			mode:   ModeGeneral,
			titles: &stubTitles{title: "Example Domain"},
			want:   "Mondays",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPreprocessor(tt.titles, 0, nil)

			assert.Equal(t, tt.want, p.Preprocess(context.Background(), tt.text, tt.mode))
			assert.Equal(t, tt.wantCalls, tt.titles.calls)
		})
	}
}

func TestPreprocessNilResolver(t *testing.T) {
	p := NewPreprocessor(nil, 0, nil)

	assert.Equal(t, NoTitleSentinel, p.Preprocess(context.Background(), "https://example.com", ModeGeneral))
}

func TestPreprocessNormalizesAndTruncates(t *testing.T) {
	p := NewPreprocessor(nil, 5, nil)

	// "e" followed by a combining acute accent composes into one rune.
	got := p.Preprocess(context.Background(), "cafe\u0301 society", ModeCorporate)
	assert.Equal(t, "caf\u00e9", got)

	long := strings.Repeat("ж", 10)
	assert.Equal(t, strings.Repeat("ж", 5), p.Preprocess(context.Background(), long, ModeGeneral))
}
