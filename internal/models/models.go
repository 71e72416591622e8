package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an identifier that the API may send as a JSON string or number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number, got %s", data)
	}
	*id = ID(n.String())
	return nil
}

type Shift struct {
	ID          ID `json:"id"`
	WorkplaceID ID `json:"workplaceId"`
}

type Workplace struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

type WorkplaceCount struct {
	WorkplaceID ID  `json:"workplaceId"`
	Count       int `json:"count"`
}

type ReportEntry struct {
	Name   string `json:"name"`
	Shifts int    `json:"shifts"`
}

// Status describes how a run ended. Only StatusOK carries entries.
type Status string

const (
	StatusOK                 Status = "ok"
	StatusNoShifts           Status = "no_shifts"
	StatusNoActiveWorkplaces Status = "no_active_workplaces"
)

type Report struct {
	Status        Status        `json:"status"`
	TopWorkplaces []ReportEntry `json:"topWorkplaces"`
	Stats         struct {
		TotalShifts     int `json:"totalShifts"`
		TotalWorkplaces int `json:"totalWorkplaces"`
		Skipped         int `json:"skipped"`
		TimeElapsed     int `json:"timeElapsedMs"`
	} `json:"stats"`
}
