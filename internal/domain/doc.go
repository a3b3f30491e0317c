// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// The central aggregate is User, which owns a KnowledgeSet of StudyCards.
// Every StudyCard carries a MemoryHistory: an append-only list of review logs
// plus the current MemoryState produced by the scheduling algorithm. The
// domain never computes schedules itself; it records results handed to it by
// the srs package and answers selection queries (new cards for a lesson, due
// cards for fixation) over what it has recorded.
package domain
