package dispatch

func init() {
	register("Create a project.", func() Input { return &CreateProjectInput{} })
	register("Update fields of a project.", func() Input { return &UpdateProjectInput{} })
	register("Delete a project and its milestones. Its tasks, requirements and notes are kept without a project.", func() Input { return &DeleteProjectInput{} })
	register("List projects.", func() Input { return &ListProjectsInput{} })
	register("Select the active project that scopes lists and defaults. An empty project clears it.", func() Input { return &SetActiveProjectInput{} })
	register("Summarize a project: progress, task counts, milestones and overdue work.", func() Input { return &ProjectStatusInput{} })

	register("Create a milestone in a project.", func() Input { return &CreateMilestoneInput{} })
	register("Update fields of a milestone.", func() Input { return &UpdateMilestoneInput{} })
	register("Delete a milestone and unlink its tasks.", func() Input { return &DeleteMilestoneInput{} })
	register("List milestones with their progress.", func() Input { return &ListMilestonesInput{} })

	register("Create a task, optionally linked to a milestone.", func() Input { return &CreateTaskInput{} })
	register("Update fields of a task.", func() Input { return &UpdateTaskInput{} })
	register("Delete a task. Its subtasks are kept and detached from it.", func() Input { return &DeleteTaskInput{} })
	register("List tasks with optional filters.", func() Input { return &ListTasksInput{} })
	register("Find tasks whose title matches a fragment.", func() Input { return &FindTaskInput{} })
	register("Mark a task done.", func() Input { return &CompleteTaskInput{} })
	register("Add a dated follow-up to a task.", func() Input { return &AddFollowUpInput{} })
	register("Mark a task follow-up completed.", func() Input { return &CompleteFollowUpInput{} })
	register("Link a task to a milestone in the same project.", func() Input { return &LinkTaskInput{} })
	register("Remove a task's milestone link.", func() Input { return &UnlinkTaskInput{} })
	register("Record that a milestone delivers a requirement.", func() Input { return &LinkRequirementInput{} })

	register("Create a requirement. Keys (REQ-001, ...) are assigned automatically.", func() Input { return &CreateRequirementInput{} })
	register("Update fields of a requirement. Core fields of locked requirements cannot change.", func() Input { return &UpdateRequirementInput{} })
	register("Delete a requirement. Trace links from other requirements to it are left in place.", func() Input { return &DeleteRequirementInput{} })
	register("List requirements with optional filters.", func() Input { return &ListRequirementsInput{} })
	register("Find requirements by key or title fragment.", func() Input { return &FindRequirementInput{} })
	register("Add a trace link from a requirement to another artifact.", func() Input { return &AddTraceLinkInput{} })
	register("Remove a trace link.", func() Input { return &RemoveTraceLinkInput{} })
	register("Clear the suspect flag on one or all trace links of a requirement.", func() Input { return &ClearSuspectInput{} })
	register("List requirements that have suspect trace links.", func() Input { return &SuspectRequirementsInput{} })
	register("List everything that traces to or from a requirement, directly or transitively.", func() Input { return &AnalyzeImpactInput{} })
	register("Report test coverage of the active project's requirements.", func() Input { return &CoverageReportInput{} })

	register("Snapshot requirements into a baseline.", func() Input { return &CreateBaselineInput{} })
	register("Lock a baseline and the requirements it contains.", func() Input { return &LockBaselineInput{} })
	register("List baselines.", func() Input { return &ListBaselinesInput{} })
	register("Compare a baseline with the current requirements.", func() Input { return &CompareBaselineInput{} })

	register("Create a note.", func() Input { return &CreateNoteInput{} })
	register("Update fields of a note.", func() Input { return &UpdateNoteInput{} })
	register("Delete a note.", func() Input { return &DeleteNoteInput{} })
	register("List notes, pinned first.", func() Input { return &ListNotesInput{} })

	register("Report overdue and upcoming work and milestones at risk.", func() Input { return &AnalyzeScheduleInput{} })
	register("List schedule, assignment and traceability risks by severity.", func() Input { return &AnalyzeRisksInput{} })
	register("Count entities by kind and status.", func() Input { return &StatisticsInput{} })
}
