package types

// ProcessedRecord は、解析に成功した1件のURLから生成されたメッセージ行を保持します。
// CSV出力とプレビュー表示の両方で利用される、生成後は不変の値です。
type ProcessedRecord struct {
	SourceURL       string `yaml:"source_url" json:"source_url"`             // 入力されたURL (トリム済み)
	StoreIdentifier string `yaml:"store_identifier" json:"store_identifier"` // ドメインラベルまたはSNSハンドル
	ContactLabel    string `yaml:"contact_label" json:"contact_label"`       // 宛名
	StrengthNote    string `yaml:"strength_note" json:"strength_note"`       // 評価できる点 (conquista)
	OpportunityNote string `yaml:"opportunity_note" json:"opportunity_note"` // 改善の余地 (oportunidade)
	Message         string `yaml:"message" json:"message"`                   // 送信用メッセージ本文
}

// FailureKind は、エントリが除外された理由の分類です。
// いずれもエントリ単位で完結し、バッチ全体を停止させることはありません。
type FailureKind string

const (
	FailureValidation FailureKind = "validation" // URLとして構文的に不正
	FailureExtraction FailureKind = "extraction" // 識別子を導出できない
	FailureAnalysis   FailureKind = "analysis"   // アナライザーが失敗 (通信/パース/タイムアウト)
	FailureInternal   FailureKind = "internal"   // 予期しない内部エラー (panic を含む)
)

func (k FailureKind) String() string { return string(k) }

// RejectedEntry は、処理できなかった入力行とその理由を保持します。
type RejectedEntry struct {
	SourceURL string      `yaml:"source_url" json:"source_url"`
	Kind      FailureKind `yaml:"kind" json:"kind"`
	Reason    string      `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// SiteProfile は、委譲アナライザー (/analyze) が返すレコードです。
// ローカルのページインスペクターも同じ形でプロフィールを組み立てます。
type SiteProfile struct {
	URL              string   `json:"url"`
	StoreName        string   `json:"store_name"`
	ContactPerson    string   `json:"contact_person"`
	Title            string   `json:"title,omitempty"`
	Description      string   `json:"description,omitempty"`
	Keywords         string   `json:"keywords,omitempty"`
	OGImage          string   `json:"og_image,omitempty"`
	InstagramLink    string   `json:"instagram_link,omitempty"`
	FacebookLink     string   `json:"facebook_link,omitempty"`
	TwitterLink      string   `json:"twitter_link,omitempty"`
	LinkedInLink     string   `json:"linkedin_link,omitempty"`
	YouTubeLink      string   `json:"youtube_link,omitempty"`
	TikTokLink       string   `json:"tiktok_link,omitempty"`
	EstimatedTraffic string   `json:"estimated_traffic,omitempty"`
	SEOScore         string   `json:"seo_score,omitempty"`
	HasBlog          string   `json:"has_blog,omitempty"`
	BlogFeed         string   `json:"blog_feed,omitempty"`  // ページが宣言する記事のあるフィード
	BlogTitle        string   `json:"blog_title,omitempty"` // フィードのタイトル
	BlogPostCount    int      `json:"blog_post_count,omitempty"`
	RecentPosts      []string `json:"recent_posts,omitempty"` // フィード内の最新記事 (最大3件)
	Conquista        string   `json:"conquista"`
	Oportunidade     string   `json:"oportunidade"`
	Message          string   `json:"cold_outreach_message,omitempty"`
}
