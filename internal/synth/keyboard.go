package synth

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/xkilldash9x/deskpilot/api/schemas"
)

// PressKey presses and releases a single named key.
func (s *Synthesizer) PressKey(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("synth: key name is empty")
	}
	if err := s.device.DispatchKeyEvent(ctx, schemas.KeyEventData{Type: schemas.KeyDown, Key: key}); err != nil {
		return synthErr("key down "+key, err)
	}
	if err := s.device.DispatchKeyEvent(ctx, schemas.KeyEventData{Type: schemas.KeyUp, Key: key}); err != nil {
		return synthErr("key up "+key, err)
	}
	return nil
}

// PressCombo holds 2-3 keys: key-down in listed order, then key-up in
// reverse, so modifiers wrap the main key. If a key-down fails, every key
// already held is released (reverse order) before returning.
func (s *Synthesizer) PressCombo(ctx context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(keys) < 2 || len(keys) > 3 {
		return fmt.Errorf("synth: key combination needs 2 or 3 keys, got %d", len(keys))
	}

	held := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if err := s.device.DispatchKeyEvent(ctx, schemas.KeyEventData{Type: schemas.KeyDown, Key: key}); err != nil {
			s.releaseKeys(held)
			return synthErr("combo key down "+key, err)
		}
		held = append(held, key)
	}

	for i := len(held) - 1; i >= 0; i-- {
		if err := s.device.DispatchKeyEvent(ctx, schemas.KeyEventData{Type: schemas.KeyUp, Key: held[i]}); err != nil {
			s.releaseKeys(held[:i])
			return synthErr("combo key up "+held[i], err)
		}
	}
	return nil
}

// releaseKeys is the best-effort key-up for a partially pressed combo.
// The caller must hold mu.
func (s *Synthesizer) releaseKeys(held []string) {
	if len(held) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	for i := len(held) - 1; i >= 0; i-- {
		if err := s.device.DispatchKeyEvent(ctx, schemas.KeyEventData{Type: schemas.KeyUp, Key: held[i]}); err != nil {
			s.logger.Error("Failed to release key after combo error; key may remain pressed.",
				zap.String("key", held[i]), zap.Error(err))
		}
	}
}

// TypeText enters text one character at a time, each as a key-down/key-up
// pair carrying the literal character. Text is NFC-normalized first so
// composed characters arrive as a single event where possible. It returns
// the number of characters typed.
func (s *Synthesizer) TypeText(ctx context.Context, text string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text = norm.NFC.String(text)
	typed := 0
	for _, r := range text {
		ch := string(r)
		if err := s.device.DispatchKeyEvent(ctx, schemas.KeyEventData{Type: schemas.KeyDown, Text: ch}); err != nil {
			return typed, synthErr(fmt.Sprintf("type char %d", typed+1), err)
		}
		if err := s.device.DispatchKeyEvent(ctx, schemas.KeyEventData{Type: schemas.KeyUp, Text: ch}); err != nil {
			return typed, synthErr(fmt.Sprintf("type char %d", typed+1), err)
		}
		typed++
		if err := s.sleep(ctx, "type interval", s.timing.TypeInterval); err != nil {
			return typed, err
		}
	}
	return typed, nil
}
