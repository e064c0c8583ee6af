// Package core defines the shared language of leapview.
//
// This package contains:
//   - Result entities (Table, Column, Kind, FieldSchema)
//   - The warehouse contract (Connector, Client)
//   - Credentials exchanged for a Client
//   - The error taxonomy shared by every layer
//
// The Golden Rule: pkg/core imports only the standard library and its JSON codec.
// All other packages depend on core, not the reverse.
package core
