package emotion

import (
	"maps"
	"strings"
	"sync"
)

// ResultCache хранит результаты анализа по нормализованному тексту.
// Запись идемпотентна: повторная вставка того же ключа ничего не меняет.
type ResultCache struct {
	mu    sync.RWMutex
	items map[string]AnalysisResult
}

// NewResultCache создает пустой кэш
func NewResultCache() *ResultCache {
	return &ResultCache{
		items: make(map[string]AnalysisResult),
	}
}

// Get возвращает копию сохраненного результата
func (c *ResultCache) Get(key string) (AnalysisResult, bool) {
	c.mu.RLock()
	r, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return AnalysisResult{}, false
	}
	return r.clone(), true
}

// Put сохраняет результат, если ключа еще нет
func (c *ResultCache) Put(key string, r AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; exists {
		return
	}
	c.items[key] = r.clone()
}

// Len возвращает количество записей
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// normalizeKey строит ключ кэша: обрезка пробелов и нижний регистр
func normalizeKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func (r AnalysisResult) clone() AnalysisResult {
	r.EmotionScores = maps.Clone(r.EmotionScores)
	return r
}
