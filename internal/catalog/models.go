// Package catalog holds the application's structure: stages contain tasks
// and tasks contain questions whose content is the raw form schema.
package catalog

import "formflow/pkg/domain"

// Stage is a phase of the overall application.
type Stage struct {
	ID    domain.StageID `json:"id"`
	Name  string         `json:"name"`
	Order int            `json:"order"`
}

// Task is a named group of related questions.
type Task struct {
	ID      domain.TaskID  `json:"id"`
	StageID domain.StageID `json:"stage_id"`
	Name    string         `json:"name"`
	Order   int            `json:"order"`
}

// Question is one page of the application. Content is the stored form schema
// JSON, parsed fresh on every use.
type Question struct {
	ID      domain.QuestionID `json:"id"`
	TaskID  domain.TaskID     `json:"task_id"`
	Slug    string            `json:"slug"`
	Order   int               `json:"order"`
	Content string            `json:"-"`
}
