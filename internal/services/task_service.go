package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"agroterra/internal/models"
	"agroterra/internal/repositories"
)

// TaskService defines the interface for field-task business logic.
type TaskService interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, id int64, updateData *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id int64) error

	UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) (*models.Task, error)
	UpdateAssignee(ctx context.Context, id int64, assigneeID int) (*models.Task, error)

	// SendDueReminders pushes Telegram reminders for tasks whose reminder
	// time has passed. Invoked from a periodic goroutine in app wiring.
	SendDueReminders(ctx context.Context, limit int) (int, error)
}

type taskService struct {
	repo     repositories.TaskRepository
	notifier *TelegramService
}

// NewTaskService creates a new instance of TaskService. notifier may be nil
// when Telegram is not configured.
func NewTaskService(repo repositories.TaskRepository, notifier *TelegramService) TaskService {
	return &taskService{repo: repo, notifier: notifier}
}

func (s *taskService) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.Status == "" {
		task.Status = models.StatusNew
	}
	if task.Priority == "" {
		task.Priority = models.PriorityNormal
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *taskService) GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *taskService) Update(ctx context.Context, id int64, updateData *models.Task) (*models.Task, error) {
	existingTask, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existingTask == nil {
		return nil, nil
	}

	existingTask.PlotID = updateData.PlotID
	existingTask.AssigneeID = updateData.AssigneeID
	existingTask.Title = updateData.Title
	existingTask.Description = updateData.Description
	existingTask.DueDate = updateData.DueDate
	existingTask.ReminderAt = updateData.ReminderAt
	existingTask.Priority = updateData.Priority
	existingTask.Status = updateData.Status

	existingTask.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existingTask); err != nil {
		return nil, err
	}
	return existingTask, nil
}

func (s *taskService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *taskService) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) (*models.Task, error) {
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *taskService) UpdateAssignee(ctx context.Context, id int64, assigneeID int) (*models.Task, error) {
	if err := s.repo.UpdateAssignee(ctx, id, assigneeID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *taskService) SendDueReminders(ctx context.Context, limit int) (int, error) {
	tasks, err := s.repo.ListDueForReminder(ctx, limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, t := range tasks {
		if s.notifier != nil {
			text := fmt.Sprintf("Reminder: <b>%s</b>", t.Title)
			if t.DueDate != nil {
				text += fmt.Sprintf(" (due %s)", t.DueDate.Format("02.01.2006"))
			}
			if err := s.notifier.NotifyAssignee(ctx, t.AssigneeID, text); err != nil {
				log.Printf("[tasks][remind] notify failed: task_id=%d err=%v", t.ID, err)
				continue
			}
		}
		if err := s.repo.SetReminderFired(ctx, t.ID); err != nil {
			log.Printf("[tasks][remind] mark fired failed: task_id=%d err=%v", t.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}
