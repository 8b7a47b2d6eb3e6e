package host

import (
	"context"
	"time"

	"src.xs.sh/pkg/dispatch"
	"src.xs.sh/pkg/types"
)

var taskType = types.NewHost("System.Threading.Tasks.Task")

// Task is the value of a Task. Tasks run to completion before the method
// that starts them returns, so a Task is always completed; it records
// whether the work failed.
type Task struct {
	err error
}

// Kind returns "task".
func (t *Task) Kind() string { return "task" }

func init() {
	addConstant(taskType, "CompletedTask", taskType, &Task{})
	addStatic(taskType, "Delay", params(types.Int), taskType, func(_ any, a []any) (any, error) {
		ms := a[0].(int)
		if ms < 0 {
			return nil, NewException(ArgumentType, "The value needs to be non-negative.")
		}
		err := dispatch.Run(context.Background(), func(_ context.Context, l *dispatch.Loop) {
			time.AfterFunc(time.Duration(ms)*time.Millisecond, func() { l.Complete(nil) })
		})
		return &Task{err}, nil
	})
	addStatic(taskType, "Run", params(types.LambdaOf(nil, types.Void)), taskType, func(_ any, a []any) (any, error) {
		f, ok := a[0].(Callable)
		if !ok {
			return nil, NewException(ArgumentType, "Value cannot be null.")
		}
		err := dispatch.Run(context.Background(), func(_ context.Context, l *dispatch.Loop) {
			l.Post(func() {
				_, err := f.Call(nil)
				l.Complete(err)
			})
		})
		return &Task{err}, nil
	})
	addMethod(taskType, "Wait", nil, types.Void, func(recv any, _ []any) (any, error) {
		return nil, recv.(*Task).err
	})
	addProperty(taskType, "IsCompleted", types.Bool, func(any) (any, error) {
		return true, nil
	})
	addProperty(taskType, "IsFaulted", types.Bool, func(recv any) (any, error) {
		return recv.(*Task).err != nil, nil
	})
}
