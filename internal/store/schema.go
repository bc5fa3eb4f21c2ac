package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names.
const (
	progressTable   = "goal_progress"
	attemptTable    = "attempt_events"
	llmRequestTable = "llm_request_events"
)

var (
	progressColumns = []*schema.Column{
		{Name: "goal_id", Type: field.TypeString, Unique: true},
		{Name: "percentage", Type: field.TypeInt},
		{Name: "status", Type: field.TypeString},
		{Name: "completions", Type: field.TypeInt, Default: 0},
		{Name: "updated_at", Type: field.TypeTime},
	}
	progressSchema = &schema.Table{
		Name:       progressTable,
		Columns:    progressColumns,
		PrimaryKey: []*schema.Column{progressColumns[0]},
	}

	// Every event table starts with the EventMixin columns:
	// id, sequence, timestamp.
	attemptColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "attempt_id", Type: field.TypeString},
		{Name: "goal_id", Type: field.TypeString},
		{Name: "stage", Type: field.TypeString},
		{Name: "correct", Type: field.TypeInt},
		{Name: "total", Type: field.TypeInt},
		{Name: "percentage", Type: field.TypeInt},
		{Name: "passed", Type: field.TypeBool},
		{Name: "proficiency", Type: field.TypeInt, Default: 0},
	}
	attemptSchema = &schema.Table{
		Name:       attemptTable,
		Columns:    attemptColumns,
		PrimaryKey: []*schema.Column{attemptColumns[0]},
		Indexes: []*schema.Index{
			{Name: "attemptevent_goal_id", Columns: []*schema.Column{attemptColumns[4]}},
			{Name: "attemptevent_timestamp", Columns: []*schema.Column{attemptColumns[2]}},
		},
	}

	llmRequestColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmRequestSchema = &schema.Table{
		Name:       llmRequestTable,
		Columns:    llmRequestColumns,
		PrimaryKey: []*schema.Column{llmRequestColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmRequestColumns[5]}},
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmRequestColumns[2]}},
		},
	}

	tables = []*schema.Table{progressSchema, attemptSchema, llmRequestSchema}
)
