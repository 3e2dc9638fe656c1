package utils

import (
	"sync"
	"time"
)

// RateLimiter реализует ограничение частоты запросов с фиксированным окном
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
}

type window struct {
	start time.Time
	count int
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
	}
}

// Allow проверяет, разрешен ли запрос для данного ключа
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	w, exists := rl.windows[key]
	if !exists || now.Sub(w.start) >= rl.period {
		// Начинаем новое окно
		rl.windows[key] = &window{start: now, count: 1}
		return true
	}

	// Проверяем лимит в текущем окне
	if w.count >= rl.limit {
		return false
	}

	w.count++
	return true
}

// Reset сбрасывает счетчик для ключа
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.windows, key)
}

// GetRemaining возвращает количество оставшихся запросов в текущем окне
func (rl *RateLimiter) GetRemaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, exists := rl.windows[key]
	if !exists || time.Since(w.start) >= rl.period {
		return rl.limit
	}

	remaining := rl.limit - w.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GetResetTime возвращает время окончания текущего окна
func (rl *RateLimiter) GetResetTime(key string) time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, exists := rl.windows[key]
	if !exists {
		return time.Now()
	}
	return w.start.Add(rl.period)
}
