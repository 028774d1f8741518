package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ApplicantAnswersKey returns the hash key mirroring an applicant's live answers
func (r *CacheKeyStruct) ApplicantAnswersKey(applicantID string) string {
	return fmt.Sprintf("applicant:%s:test:answers", applicantID)
}

// ProctorMonitorChannel returns the Redis PubSub channel for the live proctoring monitor
func (r *CacheKeyStruct) ProctorMonitorChannel() string {
	return "proctor:monitor"
}

var CacheKey = NewCacheKeyStruct()
