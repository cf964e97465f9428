// Package logx is the structured logger used across timeflow.
//
// It is a thin value-type wrapper over zerolog. The zero Logger and Nop() are
// safe no-op loggers, so every component can hold a Logger without nil checks.
// Fields are applied in order; later fields with the same key win.
package logx
