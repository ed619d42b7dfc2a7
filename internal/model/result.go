package model

// InterfaceDownMessage is reported to API clients for unavailable results
const InterfaceDownMessage = "Interface is down"

// Result carries either data or the fact that the monitored interface is down
type Result[T any] struct {
	Data        T
	Unavailable bool
}

func Available[T any](data T) Result[T] {
	return Result[T]{Data: data}
}

func InterfaceDown[T any]() Result[T] {
	return Result[T]{Unavailable: true}
}
