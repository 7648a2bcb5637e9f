package types

// Membership roles
const (
	RoleOwner  = "owner"
	RoleMember = "member"
	RoleMentor = "mentor"
)

// Project statuses
const (
	ProjectRecruiting = "recruiting"
	ProjectActive     = "active"
	ProjectCompleted  = "completed"
	ProjectArchived   = "archived"
)

// Milestone statuses
const (
	MilestonePlanned   = "planned"
	MilestoneActive    = "active"
	MilestoneCompleted = "completed"
)

// Task statuses
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskDone       = "done"
)

// Application lifecycle
const (
	DirectionApplied = "applied"
	DirectionInvited = "invited"

	ApplicationPending   = "pending"
	ApplicationAccepted  = "accepted"
	ApplicationRejected  = "rejected"
	ApplicationWithdrawn = "withdrawn"
)

func ValidRole(role string) bool {
	return role == RoleOwner || role == RoleMember || role == RoleMentor
}

func ValidProjectStatus(status string) bool {
	switch status {
	case ProjectRecruiting, ProjectActive, ProjectCompleted, ProjectArchived:
		return true
	}
	return false
}

func ValidTaskStatus(status string) bool {
	return status == TaskTodo || status == TaskInProgress || status == TaskDone
}

func ValidTaskPriority(priority string) bool {
	return priority == "low" || priority == "medium" || priority == "high"
}

func ValidMilestoneStatus(status string) bool {
	switch status {
	case MilestonePlanned, MilestoneActive, MilestoneCompleted:
		return true
	}
	return false
}
