package api

import (
	"fmt"
	"net/url"
	"strconv"
)

// MaxTimeframe is the longest look-back, in minutes, the operations
// endpoints accept.
const MaxTimeframe = 1440

// OperationsQuery parameterises the messaging operations and operational
// realtime endpoints. Id lists are comma separated; "all" selects every
// active skill, agent or group.
type OperationsQuery struct {
	Timeframe int // minutes before now
	Version   int // defaults to 1
	SkillIDs  string
	AgentIDs  string
	GroupIDs  string
	Interval  int // minutes; must divide Timeframe
	Histogram string
}

func (q OperationsQuery) version() int {
	if q.Version == 0 {
		return 1
	}
	return q.Version
}

func (q OperationsQuery) validate() error {
	if q.Timeframe <= 0 || q.Timeframe > MaxTimeframe {
		return fmt.Errorf("timeframe must be between 1 and %d minutes, got %d", MaxTimeframe, q.Timeframe)
	}
	if q.Interval < 0 {
		return fmt.Errorf("interval must not be negative, got %d", q.Interval)
	}
	if q.Interval > 0 && (q.Interval > q.Timeframe || q.Timeframe%q.Interval != 0) {
		return fmt.Errorf("interval %d must divide timeframe %d", q.Interval, q.Timeframe)
	}
	return nil
}

func (q OperationsQuery) values(keys ...string) url.Values {
	params := url.Values{}
	params.Set("v", strconv.Itoa(q.version()))
	for _, key := range keys {
		switch key {
		case "timeframe":
			setInt(params, key, q.Timeframe)
		case "skillIds":
			setString(params, key, q.SkillIDs)
		case "agentIds":
			setString(params, key, q.AgentIDs)
		case "groupIds":
			setString(params, key, q.GroupIDs)
		case "interval":
			setInt(params, key, q.Interval)
		case "histogram":
			setString(params, key, q.Histogram)
		}
	}
	return params
}
