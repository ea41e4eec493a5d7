// Package sloghooks implements typejson.Hooks on top of log/slog.
package sloghooks

import (
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"reflect"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/unkn0wn-root/typejson"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery    uint64
	ParseFailedEvery uint64
	// Codec build events are noisy on startup; off unless set.
	LogCodecBuilds bool
	// Optional key redactor. Defaults to an xxhash64 of the key.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr    atomic.Uint64
	parseFailedCtr atomic.Uint64
}

var _ typejson.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64String(k))
	return hex.EncodeToString(b[:])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) CodecBuilt(t reflect.Type, s typejson.Strategy) {
	if h.l == nil || !h.opts.LogCodecBuilds {
		return
	}
	h.l.Debug("typejson.codec_built",
		"type", t.String(),
		"strategy", s.String())
}

func (h *Hooks) CodecRace(t reflect.Type) {
	if h.l == nil {
		return
	}
	h.l.Debug("typejson.codec_race", "type", t.String())
}

func (h *Hooks) PlaceholderResolved(t reflect.Type) {
	if h.l == nil || !h.opts.LogCodecBuilds {
		return
	}
	h.l.Debug("typejson.placeholder_resolved", "type", t.String())
}

func (h *Hooks) ParseFailed(t reflect.Type, err error) {
	if h.l == nil || !sample(h.opts.ParseFailedEvery, &h.parseFailedCtr) {
		return
	}
	h.l.Info("typejson.parse_failed",
		"type", t.String(),
		"err", err)
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("typejson.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("typejson.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) ProviderError(op, storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("typejson.provider_error",
		"op", op,
		"key", h.redact(storageKey),
		"err", err)
}
