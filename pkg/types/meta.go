package types

import json "github.com/goccy/go-json"

// MetaEntry describes one stored item in a branch meta index.
// Data is an opaque category specific payload.
type MetaEntry struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data"`
	DataPath string          `json:"data_path"`
}

// CheckpointData is the meta entry payload recorded for a model checkpoint.
type CheckpointData struct {
	Name  string `json:"name"`
	Epoch int    `json:"epoch"`
	Meta  any    `json:"meta"`
	Model any    `json:"model"`
}

// ModelDescriptor is the model.json document written inside a checkpoint
// directory.
type ModelDescriptor struct {
	Name  string `json:"name"`
	Epoch int    `json:"epoch"`
	Model any    `json:"model"`
}
