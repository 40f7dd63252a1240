package storage

import (
	"github.com/bytedance/sonic"

	"github.com/MayaraRocha95/todo-list-hp/domain"
)

func encodeTasks(tasks []domain.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return sonic.Marshal(tasks)
}

func decodeTasks(data []byte) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := sonic.Unmarshal(data, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}
