package models

import "maps"

// State is the ledger aggregate. Loans, requests and audits are kept newest
// first.
type State struct {
	Users      []User         `json:"users"`
	Items      []Item         `json:"items"`
	Loans      []Loan         `json:"loans"`
	Requests   []Request      `json:"requests"`
	Audits     []Audit        `json:"audits"`
	Categories []string       `json:"categories"`
	Locations  []string       `json:"locations"`
	Sequences  map[string]int `json:"sequences"`
}

// Clone returns a deep copy of s. Callers may mutate the copy freely.
func (s State) Clone() State {
	c := State{
		Users:      append([]User(nil), s.Users...),
		Items:      append([]Item(nil), s.Items...),
		Loans:      make([]Loan, len(s.Loans)),
		Requests:   make([]Request, len(s.Requests)),
		Audits:     make([]Audit, len(s.Audits)),
		Categories: append([]string(nil), s.Categories...),
		Locations:  append([]string(nil), s.Locations...),
		Sequences:  maps.Clone(s.Sequences),
	}
	if c.Sequences == nil {
		c.Sequences = map[string]int{}
	}
	for i, l := range s.Loans {
		c.Loans[i] = l.Clone()
	}
	for i, r := range s.Requests {
		c.Requests[i] = r.Clone()
	}
	for i, a := range s.Audits {
		a.Payload = maps.Clone(a.Payload)
		c.Audits[i] = a
	}
	return c
}

// Clone copies l including its optional timestamps.
func (l Loan) Clone() Loan {
	l.DueDate = cloneTime(l.DueDate)
	l.DateIn = cloneTime(l.DateIn)
	return l
}

func (r Request) Clone() Request {
	r.ProcessedAt = cloneTime(r.ProcessedAt)
	return r
}

func cloneTime[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
