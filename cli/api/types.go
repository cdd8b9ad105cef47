package api

// This file contains the wire representation of API payloads and their
// conversion into model records.

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/perfgo/runnerstat/model"
)

type pagination struct {
	PageSize int `json:"pageSize"`
}

type listRequest struct {
	OrganizationID string     `json:"organizationId"`
	Pagination     pagination `json:"pagination"`
}

type responsePagination struct {
	NextToken string `json:"nextToken,omitempty"`
}

type listRunnersResponse struct {
	Runners    []runner           `json:"runners"`
	Pagination responsePagination `json:"pagination"`
}

type listEnvironmentsResponse struct {
	Environments []environment      `json:"environments"`
	Pagination   responsePagination `json:"pagination"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type runner struct {
	RunnerID  string     `json:"runnerId"`
	Name      string     `json:"name"`
	Kind      string     `json:"kind"`
	CreatedAt *timestamp `json:"createdAt"`
	Spec      *struct {
		Configuration *struct {
			Region string `json:"region"`
		} `json:"configuration"`
	} `json:"spec"`
	Status *struct {
		Region        string `json:"region"`
		SystemDetails string `json:"systemDetails"`
		Phase         string `json:"phase"`
	} `json:"status"`
}

type environment struct {
	ID       string `json:"id"`
	Metadata *struct {
		RunnerID string `json:"runnerId"`
	} `json:"metadata"`
	Spec *struct {
		ContextURL string `json:"contextUrl"`
	} `json:"spec"`
	Status *struct {
		Phase string `json:"phase"`
	} `json:"status"`
}

// timestamp accepts both the RFC 3339 string form and the
// {"seconds": ..., "nanos": ...} object form of a protobuf Timestamp.
// Anything it cannot interpret decodes to the zero time.
type timestamp struct {
	time.Time
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
			t.Time = parsed
		}
		return nil
	}

	var obj struct {
		Seconds json.RawMessage `json:"seconds"`
		Nanos   json.RawMessage `json:"nanos"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	seconds, ok := parseInt(obj.Seconds)
	if !ok || seconds == 0 {
		return nil
	}
	nanos, _ := parseInt(obj.Nanos)
	t.Time = time.Unix(seconds, nanos).UTC()
	return nil
}

// parseInt reads an int64 encoded either as a JSON number or a JSON string.
func parseInt(raw json.RawMessage) (int64, bool) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (r runner) toModel() model.Runner {
	out := model.Runner{
		ID:    strings.TrimSpace(r.RunnerID),
		Name:  strings.TrimSpace(r.Name),
		Kind:  model.ParseRunnerKind(r.Kind),
		Phase: model.RunnerPhaseUnspecified,
	}
	if out.Name == "" {
		out.Name = model.DefaultRunnerName
	}
	if r.CreatedAt != nil {
		out.CreatedAt = r.CreatedAt.Time
	}
	if r.Spec != nil && r.Spec.Configuration != nil {
		out.ConfiguredRegion = strings.TrimSpace(r.Spec.Configuration.Region)
	}
	if r.Status != nil {
		out.StatusRegion = strings.TrimSpace(r.Status.Region)
		out.SystemDetails = r.Status.SystemDetails
		if phase := strings.TrimSpace(r.Status.Phase); phase != "" {
			out.Phase = model.RunnerPhase(phase)
		}
	}
	return out
}

func (e environment) toModel() model.Environment {
	out := model.Environment{
		ID: strings.TrimSpace(e.ID),
	}
	if e.Metadata != nil {
		out.RunnerID = strings.TrimSpace(e.Metadata.RunnerID)
	}
	if e.Spec != nil {
		out.ContextURL = e.Spec.ContextURL
	}
	if e.Status != nil {
		out.Phase = e.Status.Phase
	}
	return out
}
