package inbound

import (
	"encoding/json"
	"net/http"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
	"github.com/shandysiswandi/gofraud/internal/ingest/page"
)

type UploadResponse struct {
	UploadID string `json:"upload_id"`
}

func (UploadResponse) StatusCode() int {
	return http.StatusAccepted
}

func (UploadResponse) Message() string {
	return "upload accepted"
}

type Summary struct {
	Total         int      `json:"total"`
	FraudCount    int      `json:"fraud_count"`
	LegitCount    int      `json:"legit_count"`
	FraudRate     *float64 `json:"fraud_rate"`
	FraudRateText string   `json:"fraud_rate_text"`
}

type StorageAttempt struct {
	Size    int    `json:"size"`
	Rows    int    `json:"rows"`
	Bytes   int    `json:"bytes"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

type Storage struct {
	Persisted  bool             `json:"persisted"`
	StoredRows int              `json:"stored_rows"`
	LadderSize int              `json:"ladder_size"`
	Truncated  bool             `json:"truncated"`
	LastResort bool             `json:"last_resort"`
	Attempts   []StorageAttempt `json:"attempts"`
}

type UploadStatusResponse struct {
	UploadID  string              `json:"upload_id"`
	FileName  string              `json:"file_name"`
	SizeBytes int64               `json:"size_bytes"`
	Status    entity.UploadStatus `json:"status"`
	Error     string              `json:"error,omitempty"`
	ErrorKind entity.ErrorKind    `json:"error_kind,omitempty"`
	StartedAt int64               `json:"started_at"`
	EndedAt   int64               `json:"ended_at"`
	Rows      int                 `json:"rows"`
	Storage   Storage             `json:"storage"`
	Summary   *Summary            `json:"summary"`
}

type PageResponse struct {
	Processing        bool             `json:"processing"`
	ProcessingText    string           `json:"processing_text"`
	DescriptionHidden bool             `json:"description_hidden"`
	DescriptionText   string           `json:"description_text"`
	Message           string           `json:"message"`
	MessageKind       page.MessageKind `json:"message_kind"`
	Alert             string           `json:"alert"`
	Alerts            int              `json:"alerts"`
	OverviewHTML      string           `json:"overview_html"`
	SidebarOpen       bool             `json:"sidebar_open"`
}

type SidebarRequest struct {
	Action        string `json:"action"`
	InsideSidebar bool   `json:"inside_sidebar"`
	OnToggle      bool   `json:"on_toggle"`
	ViewportWidth int    `json:"viewport_width"`
}

type RecordsResponse struct {
	Key     string          `json:"key"`
	Records json.RawMessage `json:"records"`
	count   int
	used    int64
	quota   int64
}

func (r RecordsResponse) Meta() map[string]any {
	return map[string]any{
		"total":       r.count,
		"used_bytes":  r.used,
		"quota_bytes": r.quota,
	}
}

func toSummary(s entity.Summary) *Summary {
	out := &Summary{
		Total:         s.Total,
		FraudCount:    s.FraudCount,
		LegitCount:    s.LegitCount,
		FraudRateText: s.FraudRateText(),
	}
	if s.RateDefined {
		rate := s.FraudRate
		out.FraudRate = &rate
	}
	return out
}

func toStorage(s entity.StorageResult) Storage {
	attempts := make([]StorageAttempt, 0, len(s.Attempts))
	for _, a := range s.Attempts {
		attempts = append(attempts, StorageAttempt{
			Size:    a.Size,
			Rows:    a.Rows,
			Bytes:   a.Bytes,
			Outcome: string(a.Outcome),
			Error:   a.Err,
		})
	}

	return Storage{
		Persisted:  s.Persisted,
		StoredRows: s.StoredRows,
		LadderSize: s.LadderSize,
		Truncated:  s.Truncated,
		LastResort: s.LastResort,
		Attempts:   attempts,
	}
}

func toPage(st page.State) PageResponse {
	return PageResponse{
		Processing:        st.Processing,
		ProcessingText:    st.ProcessingText,
		DescriptionHidden: st.DescriptionHidden,
		DescriptionText:   st.DescriptionText,
		Message:           st.Message,
		MessageKind:       st.MessageKind,
		Alert:             st.Alert,
		Alerts:            st.Alerts,
		OverviewHTML:      st.OverviewHTML,
		SidebarOpen:       st.SidebarOpen,
	}
}
