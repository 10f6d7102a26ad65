package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formflow/pkg/domain"
)

func TestLoadSeedAndSeed(t *testing.T) {
	f, err := LoadSeed("testdata/catalog.yaml")
	require.NoError(t, err)
	require.Len(t, f.Stages, 2)

	ctx := context.Background()
	store := NewInMemoryStore()
	require.NoError(t, Seed(ctx, store, f))

	stageID, err := domain.ParseStageID("0f8b2c1e-7d3a-4c5b-9e61-2a4f8d9c1b01")
	require.NoError(t, err)
	tasks, err := store.TasksByStage(ctx, stageID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Personal details", tasks[0].Name)

	questions, err := store.QuestionsByTask(ctx, tasks[0].ID)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, []string{"full-name", "reference-code", "roles"},
		[]string{questions[0].Slug, questions[1].Slug, questions[2].Slug})
	assert.Equal(t, 2, questions[2].Order)
	assert.Contains(t, questions[0].Content, "firstName")
}

func TestParseSeedRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "missing stage id",
			raw:  "stages:\n  - name: First\n",
			want: "has no id",
		},
		{
			name: "invalid id",
			raw:  "stages:\n  - id: not-a-uuid\n    name: First\n",
			want: "invalid id",
		},
		{
			name: "malformed content",
			raw: `stages:
  - id: 0f8b2c1e-7d3a-4c5b-9e61-2a4f8d9c1b01
    tasks:
      - id: 5c1d9e2a-3b4f-4a6c-8d7e-1f2a3b4c5d01
        questions:
          - id: 9a1b2c3d-4e5f-4a6b-8c7d-0e1f2a3b4c01
            slug: broken
            content: "{"
`,
			want: "not valid JSON",
		},
		{
			name: "missing slug",
			raw: `stages:
  - id: 0f8b2c1e-7d3a-4c5b-9e61-2a4f8d9c1b01
    tasks:
      - id: 5c1d9e2a-3b4f-4a6c-8d7e-1f2a3b4c5d01
        questions:
          - id: 9a1b2c3d-4e5f-4a6b-8c7d-0e1f2a3b4c01
            content: "{}"
`,
			want: "has no slug",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tt.raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
