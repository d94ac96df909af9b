package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/jobqc"
	main "github.com/fwojciec/jobqc/cmd/jobqc"
	"github.com/fwojciec/jobqc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("counts by country", func(t *testing.T) {
		t.Parallel()

		store := &mock.ArtifactStore{
			FindJobsFn: func(context.Context) ([]*jobqc.Job, error) {
				return []*jobqc.Job{
					{Country: "USA"}, {Country: "Canada"}, {Country: "USA"}, {Country: ""},
				}, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Artifacts: store}

		cmd := &main.SummaryCmd{By: "country"}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "COUNTRY  JOBS\nUSA      2\nCanada   1\nUnknown  1\n", stdout.String())
	})

	t.Run("counts by language", func(t *testing.T) {
		t.Parallel()

		store := &mock.ArtifactStore{
			FindLanguageDetailsFn: func(context.Context) ([]*jobqc.LanguageDetail, error) {
				return []*jobqc.LanguageDetail{
					{Language: "fr"}, {Language: "en"}, {Language: "en"},
				}, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Artifacts: store}

		cmd := &main.SummaryCmd{By: "language"}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "LANGUAGE  JOBS\nen        2\nfr        1\n", stdout.String())
	})

	t.Run("aligns wide characters", func(t *testing.T) {
		t.Parallel()

		store := &mock.ArtifactStore{
			FindJobsFn: func(context.Context) ([]*jobqc.Job, error) {
				return []*jobqc.Job{{Country: "日本"}, {Country: "日本"}, {Country: "Chile"}}, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Artifacts: store}

		cmd := &main.SummaryCmd{By: "country"}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "COUNTRY  JOBS\n日本     2\nChile    1\n", stdout.String())
	})

	t.Run("shows helpful message without artifacts", func(t *testing.T) {
		t.Parallel()

		store := &mock.ArtifactStore{
			FindJobsFn: func(context.Context) ([]*jobqc.Job, error) { return []*jobqc.Job{}, nil },
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Artifacts: store}

		cmd := &main.SummaryCmd{By: "country"}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No audit artifacts found")
	})

	t.Run("returns error when store fails", func(t *testing.T) {
		t.Parallel()

		store := &mock.ArtifactStore{
			FindLanguageDetailsFn: func(context.Context) ([]*jobqc.LanguageDetail, error) {
				return nil, errors.New("read failed")
			},
		}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Artifacts: store}

		cmd := &main.SummaryCmd{By: "language"}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error: Internal error.")
	})
}
