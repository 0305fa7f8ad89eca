package docs

var topics = []Topic{
	{
		Name:    "quickstart",
		Title:   "Quick Start",
		Summary: "Getting started with reqtrack",
		Content: topicQuickstart,
	},
	{
		Name:    "config",
		Title:   "Configuration Reference",
		Summary: "Config file schema, fields, and defaults",
		Content: topicConfig,
	},
	{
		Name:    "tools",
		Title:   "Tool Calls",
		Summary: "Calling operations, name resolution, and the result envelope",
		Content: topicTools,
	},
	{
		Name:    "traceability",
		Title:   "Traceability",
		Summary: "REQ keys, trace links, suspect links, impact, and coverage",
		Content: topicTraceability,
	},
	{
		Name:    "baselines",
		Title:   "Baselines",
		Summary: "Snapshotting and locking requirements",
		Content: topicBaselines,
	},
	{
		Name:    "chat",
		Title:   "Natural-Language Requests",
		Summary: "How reqtrack chat plans and runs requests",
		Content: topicChat,
	},
	{
		Name:    "data",
		Title:   "Data File",
		Summary: "Structure of .reqtrack/data.json, caching, and backups",
		Content: topicData,
	},
}

const topicQuickstart = `Quick Start
===========

1. Initialize a workspace:

    cd your-project
    reqtrack init --project Apollo

   This creates .reqtrack/config.yaml and .reqtrack/data.json and makes
   Apollo the active project.

2. Add work:

    reqtrack call create_milestone '{"name":"Design Complete","dueDate":"2025-02-01"}'
    reqtrack call create_task '{"title":"Write spec","milestone":"design"}'
    reqtrack call create_requirement '{"title":"Users can log in"}'

3. Or ask in plain language:

    reqtrack chat "add a task Review API due friday to the design milestone"

4. Check progress:

    reqtrack status

CLI Commands
------------

  reqtrack init                     Create .reqtrack/ in the current directory
  reqtrack call <tool> [json]       Run one tool call (json may be - for stdin)
  reqtrack run <plan.json>          Run a list of tool calls in order
  reqtrack run <plan.json> --dry-run
                                    Print the plan without running it
  reqtrack tools [tool]             List tools and their fields
  reqtrack chat <request>           Plan and run a natural-language request
  reqtrack chat <request> --dry-run Show the plan only
  reqtrack status                   Workspace and active project summary
  reqtrack use [project]            Set or clear the active project
  reqtrack backup                   Create a backup of the data file
  reqtrack backup --list            List backups
  reqtrack backup --restore <file>  Restore a backup
  reqtrack doctor                   Check data integrity
  reqtrack doctor --explain         Ask the model to explain problems
  reqtrack docs [topic]             Show documentation

Add --json to call, run, and status for machine-readable output.
`

const topicConfig = `Configuration Reference
=======================

The workspace is configured in .reqtrack/config.yaml. reqtrack looks for
.reqtrack/ in the current directory and its parents. Without one it runs
with defaults on an empty workspace and changes are not saved.

Fields
------

  name              string   Required. Workspace name.
  data-file         string   Data file, relative to the workspace root.
                             Default: .reqtrack/data.json. Must end in .json.
  backup-dir        string   Default: .reqtrack/backups.
  backup-retention  int      Backups kept. Default: 10.
  cache-ttl-ms      int      Read cache lifetime. Default: 1000. 0 disables.
  log-level         string   debug, info, warn, or error. Default: info.
  llm.command       string   Model command. Default: claude.
  llm.model         string   opus, sonnet, or haiku. Default: sonnet.
  llm.timeout       int      Minutes per model call. Default: 2.

Environment
-----------

  REQTRACK_LOG_LEVEL   Overrides log-level.

The --log-level flag overrides both.
`

const topicTools = `Tool Calls
==========

Every operation is a named tool with a JSON input object:

    reqtrack call link_task_to_milestone '{"task":"write spec","milestone":"design"}'

Run "reqtrack tools" for the full list with field types and allowed values.
Unknown fields and unknown tools are rejected.

Name Resolution
---------------

Fields that refer to entities accept an id, a name or title, and for
requirements a REQ key. Names are matched fuzzily: exact matches first,
then substrings, then word overlap. One-letter typos in words of four or
more letters are tolerated when no word overlaps.
Tasks, milestones and requirements are searched in the active project
first, then everywhere.

When nothing matches, the result lists the nearest candidates under an
available* key (availableTasks, availableMilestones, ...).

Enum values are normalized: "In Progress", "in_progress" and "wip" all
mean in-progress.

Result Envelope
---------------

  {"success": true, "message": "...", "task": {...}}
  {"success": false, "error": "no task matches \"x\"", "availableTasks": [...]}

When a change was applied but could not be written to disk, success is
true and a "warning" field says so.

Plans
-----

"reqtrack run" takes a JSON array of {"tool": ..., "input": {...}}. Steps
run in order; a failed step does not stop later steps. Steps see the
effects of earlier steps, so later steps can refer to entities by name.
Interrupting (Ctrl-C) skips the remaining steps.
`

const topicTraceability = `Traceability
============

Requirement Keys
----------------

Each requirement gets a key REQ-001, REQ-002, ... from a counter that only
grows. Deleted keys are never reused.

Trace Links
-----------

A trace link goes from a requirement to a target: another requirement, a
task, or a free-form reference (test-case, code, document, external,
component, defect, risk-item). Link types: derives-from, refines,
satisfies, verifies, implements, related-to, conflicts-with, depends-on.

Cycles are allowed.

Suspect Links
-------------

Changing a requirement's title, description or status marks every link
that targets it as suspect. Clear them after review:

    reqtrack call clear_suspect_link '{"requirement":"REQ-002"}'

Impact Analysis
---------------

analyze_impact walks links breadth first in both directions and reports
each reached item once, at its shortest depth.

Coverage
--------

coverage_report buckets requirements by testCoverage: covered (100),
partially covered (1-99) and uncovered (0).

Locked Requirements
-------------------

A locked requirement rejects updates and deletion. Locking happens
through baselines.
`

const topicBaselines = `Baselines
=========

A baseline is a named snapshot of requirements:

    reqtrack call create_baseline '{"name":"v1.0","lock":true}'

With no requirement list it captures the active project's requirements.
Locking a baseline locks every requirement it captured.

compare_baseline lists requirements changed or removed since the snapshot.
`

const topicChat = `Natural-Language Requests
=========================

    reqtrack chat "mark the login task done and add a follow-up to demo it monday"

reqtrack sends the model a snapshot of the workspace, the tool catalog and
your request. The model replies with a JSON plan of tool calls, which runs
like "reqtrack run": in order, best effort, every name re-resolved against
current data.

If the reply is not a usable plan nothing is changed and a short help
message is shown. Model errors are reported and not retried.

Use --dry-run to see the plan without running it.
`

const topicData = `Data File
=========

All data lives in one JSON document (.reqtrack/data.json):

  projects       Projects with their milestones
  tasks          Tasks, subtasks and follow-ups
  requirements   Requirements with their trace links
  notes          Notes
  baselines      Requirement snapshots
  metadata       Version, active project, requirement key counter

Task/milestone links are stored on both sides (task.linkedMilestoneId and
milestone.linkedTaskIds) and are always changed together.

Reads are cached for cache-ttl-ms. Writes are atomic (temp file and rename)
and serialized; when several arrive at once only the newest queued one is
written.

Files written by older versions are upgraded on load. The reviews,
documents and customFieldDefinitions collections are kept as they are.

Backups
-------

    reqtrack backup
    reqtrack backup --list
    reqtrack backup --restore .reqtrack/backups/backup-20250110-090000.000.json

Restoring first backs up the current file. Only backup-retention backups
are kept.

Integrity
---------

"reqtrack doctor" checks cross-references (dangling ids, one-sided links,
duplicate keys) without changing anything.
`
