// Package logging описывает структурный логгер, которым пользуются все
// компоненты сервиса.
package logging

import "context"

// Logger контекстный структурный логгер.
//
// Аргументы args трактуются как пары ключ-значение:
//
//	log.Info(ctx, "chunk accepted", "hash", hash, "index", 3)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With возвращает дочерний логгер с постоянными атрибутами
	With(args ...any) Logger
}

// Nop логгер, который ничего не пишет
type Nop struct{}

func (Nop) Debug(context.Context, string, ...any) {}
func (Nop) Info(context.Context, string, ...any)  {}
func (Nop) Warn(context.Context, string, ...any)  {}
func (Nop) Error(context.Context, string, ...any) {}
func (n Nop) With(...any) Logger                  { return n }
