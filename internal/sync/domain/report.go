package domain

// BumpResult describes the outcome of a version bump.
type BumpResult struct {
	Changed  bool
	Previous string
	Next     string
	Preview  string // unified diff of the intended change, set for dry runs
}

// SyncReport summarizes one release-to-index sync pass.
type SyncReport struct {
	Synced  []string // versions added to the index, in processing order
	Failed  []string // versions whose packages could not be fetched
	Skipped int      // versions excluded by the retention policy
}

// Proposal is a pull request to be opened against the chart repository.
type Proposal struct {
	Branch string
	Base   string
	Title  string
	Body   string
}

// WatchResult describes one poll of the upstream releases.
type WatchResult struct {
	LatestVersion  string
	CurrentVersion string
	ProposalURL    string // empty when nothing was opened
}
