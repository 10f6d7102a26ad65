package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"formflow/internal/form/schema"
	"formflow/pkg/domain"
)

// SeedFile is the YAML layout of a catalog: stages list their tasks and
// tasks list their questions. List position becomes Order.
type SeedFile struct {
	Stages []SeedStage `yaml:"stages"`
}

type SeedStage struct {
	ID    domain.StageID `yaml:"id"`
	Name  string         `yaml:"name"`
	Tasks []SeedTask     `yaml:"tasks"`
}

type SeedTask struct {
	ID        domain.TaskID  `yaml:"id"`
	Name      string         `yaml:"name"`
	Questions []SeedQuestion `yaml:"questions"`
}

type SeedQuestion struct {
	ID      domain.QuestionID `yaml:"id"`
	Slug    string            `yaml:"slug"`
	Content string            `yaml:"content"`
}

// Writer is the write side of a catalog store.
type Writer interface {
	SaveStage(ctx context.Context, stage *Stage) error
	SaveTask(ctx context.Context, task *Task) error
	SaveQuestion(ctx context.Context, q *Question) error
}

// LoadSeed reads and checks a YAML catalog.
func LoadSeed(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}
	return ParseSeed(raw)
}

// ParseSeed decodes a YAML catalog. Every ID must be set and every question
// content must parse as a form schema.
func ParseSeed(raw []byte) (*SeedFile, error) {
	var f SeedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode catalog seed: %w", err)
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *SeedFile) check() error {
	for _, st := range f.Stages {
		if st.ID.IsNil() {
			return fmt.Errorf("stage %q has no id", st.Name)
		}
		for _, t := range st.Tasks {
			if t.ID.IsNil() {
				return fmt.Errorf("task %q has no id", t.Name)
			}
			for _, q := range t.Questions {
				if q.ID.IsNil() {
					return fmt.Errorf("question %q has no id", q.Slug)
				}
				if strings.TrimSpace(q.Slug) == "" {
					return fmt.Errorf("question %s has no slug", q.ID)
				}
				if _, err := schema.Parse(q.Content); err != nil {
					return fmt.Errorf("question %s: %w", q.Slug, err)
				}
			}
		}
	}
	return nil
}

// Seed writes the catalog through w.
func Seed(ctx context.Context, w Writer, f *SeedFile) error {
	for i, st := range f.Stages {
		if err := w.SaveStage(ctx, &Stage{ID: st.ID, Name: st.Name, Order: i}); err != nil {
			return err
		}
		for j, t := range st.Tasks {
			if err := w.SaveTask(ctx, &Task{ID: t.ID, StageID: st.ID, Name: t.Name, Order: j}); err != nil {
				return err
			}
			for k, q := range t.Questions {
				question := &Question{ID: q.ID, TaskID: t.ID, Slug: q.Slug, Order: k, Content: q.Content}
				if err := w.SaveQuestion(ctx, question); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
