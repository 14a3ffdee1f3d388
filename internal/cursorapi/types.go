package cursorapi

// TeamMember is one entry from /teams/members.
type TeamMember struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// DailyUsageRow is one user's daily counters from /teams/daily-usage-data.
type DailyUsageRow struct {
	Date                     int64  `json:"date"`
	Email                    string `json:"email,omitempty"`
	IsActive                 bool   `json:"isActive"`
	TotalLinesAdded          int64  `json:"totalLinesAdded"`
	TotalLinesDeleted        int64  `json:"totalLinesDeleted"`
	AcceptedLinesAdded       int64  `json:"acceptedLinesAdded"`
	AcceptedLinesDeleted     int64  `json:"acceptedLinesDeleted"`
	TotalApplies             int64  `json:"totalApplies"`
	TotalAccepts             int64  `json:"totalAccepts"`
	TotalRejects             int64  `json:"totalRejects"`
	TotalTabsShown           int64  `json:"totalTabsShown"`
	TotalTabsAccepted        int64  `json:"totalTabsAccepted"`
	ComposerRequests         int64  `json:"composerRequests"`
	ChatRequests             int64  `json:"chatRequests"`
	AgentRequests            int64  `json:"agentRequests"`
	CmdkUsages               int64  `json:"cmdkUsages"`
	SubscriptionIncludedReqs int64  `json:"subscriptionIncludedReqs"`
	APIKeyReqs               int64  `json:"apiKeyReqs"`
	UsageBasedReqs           int64  `json:"usageBasedReqs"`
	BugbotUsages             int64  `json:"bugbotUsages"`
	MostUsedModel            string `json:"mostUsedModel,omitempty"`
	ApplyMostUsedExtension   string `json:"applyMostUsedExtension,omitempty"`
	TabMostUsedExtension     string `json:"tabMostUsedExtension,omitempty"`
	ClientVersion            string `json:"clientVersion,omitempty"`
}

// TokenUsage is the token/cost payload attached to billable usage events.
type TokenUsage struct {
	InputTokens      int64   `json:"inputTokens"`
	OutputTokens     int64   `json:"outputTokens"`
	CacheWriteTokens int64   `json:"cacheWriteTokens"`
	CacheReadTokens  int64   `json:"cacheReadTokens"`
	TotalCents       float64 `json:"totalCents"`
}

// UsageEventRow is one entry from /teams/filtered-usage-events. TokenUsage is
// nil for events that carry no billing payload.
type UsageEventRow struct {
	Timestamp        string      `json:"timestamp"`
	Model            string      `json:"model,omitempty"`
	Kind             string      `json:"kind,omitempty"`
	MaxMode          bool        `json:"maxMode,omitempty"`
	RequestsCosts    float64     `json:"requestsCosts,omitempty"`
	IsTokenBasedCall bool        `json:"isTokenBasedCall,omitempty"`
	TokenUsage       *TokenUsage `json:"tokenUsage,omitempty"`
	IsFreeBugbot     bool        `json:"isFreeBugbot,omitempty"`
	UserEmail        string      `json:"userEmail,omitempty"`
}

// AiCommitRow is one AI-attributed commit from the analytics API.
type AiCommitRow struct {
	CommitHash           string `json:"commitHash,omitempty"`
	UserEmail            string `json:"userEmail,omitempty"`
	RepoName             string `json:"repoName,omitempty"`
	BranchName           string `json:"branchName,omitempty"`
	IsPrimaryBranch      bool   `json:"isPrimaryBranch"`
	TotalLinesAdded      int64  `json:"totalLinesAdded"`
	TotalLinesDeleted    int64  `json:"totalLinesDeleted"`
	TabLinesAdded        int64  `json:"tabLinesAdded"`
	TabLinesDeleted      int64  `json:"tabLinesDeleted"`
	ComposerLinesAdded   int64  `json:"composerLinesAdded"`
	ComposerLinesDeleted int64  `json:"composerLinesDeleted"`
	NonAiLinesAdded      int64  `json:"nonAiLinesAdded"`
	NonAiLinesDeleted    int64  `json:"nonAiLinesDeleted"`
	CreatedAt            string `json:"createdAt,omitempty"`
}

// AiCodeChangeFile describes one file touched by an AI-assisted edit.
type AiCodeChangeFile struct {
	FileName      string `json:"fileName,omitempty"`
	FileExtension string `json:"fileExtension,omitempty"`
	LinesAdded    int64  `json:"linesAdded,omitempty"`
	LinesDeleted  int64  `json:"linesDeleted,omitempty"`
}

// Sources reported for AI code changes. Anything else counts toward the
// overall totals only.
const (
	SourceTab      = "TAB"
	SourceComposer = "COMPOSER"
)

// AiCodeChangeRow is one AI-assisted edit event from the analytics API.
type AiCodeChangeRow struct {
	UserEmail         string             `json:"userEmail,omitempty"`
	Source            string             `json:"source,omitempty"`
	Model             string             `json:"model,omitempty"`
	TotalLinesAdded   int64              `json:"totalLinesAdded"`
	TotalLinesDeleted int64              `json:"totalLinesDeleted"`
	Metadata          []AiCodeChangeFile `json:"metadata,omitempty"`
	CreatedAt         string             `json:"createdAt,omitempty"`
}
