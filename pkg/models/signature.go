package models

import (
	"fmt"
	"regexp"
)

// Signature is one fixed sensitive-content heuristic
type Signature struct {
	ID          string         `yaml:"id" json:"id"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Pattern     string         `yaml:"pattern" json:"pattern"`
	MinEntropy  float64        `yaml:"min_entropy" json:"min_entropy,omitempty"` // Checked against the first capture group when > 0
	CompiledRe  *regexp.Regexp `yaml:"-" json:"-"`
}

// SignatureDatabase contains the compiled heuristics in table order
type SignatureDatabase struct {
	Signatures []*Signature
	ByID       map[string]*Signature
}

// NewSignatureDatabase creates a new signature database
func NewSignatureDatabase() *SignatureDatabase {
	return &SignatureDatabase{
		Signatures: make([]*Signature, 0),
		ByID:       make(map[string]*Signature),
	}
}

// AddSignature compiles and adds a signature to the database
func (db *SignatureDatabase) AddSignature(sig *Signature) error {
	if _, exists := db.ByID[sig.ID]; exists {
		return fmt.Errorf("duplicate signature id %q", sig.ID)
	}
	re, err := regexp.Compile(sig.Pattern)
	if err != nil {
		return err
	}
	sig.CompiledRe = re

	db.Signatures = append(db.Signatures, sig)
	db.ByID[sig.ID] = sig
	return nil
}
