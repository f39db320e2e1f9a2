package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Fumiyasu01/matching-app/internal/domain/enums"
	"github.com/Fumiyasu01/matching-app/internal/domain/model"
)

type seedProfile struct {
	displayName string
	bio         string
	location    string
	lat, lon    float64
	lookingFor  enums.LookingFor
	skills      []string
	interests   []string
}

var demoProfiles = []seedProfile{
	{
		displayName: "田中 優希",
		bio:         "UIデザイナー歴5年。最近はFigmaでデザインシステム構築にハマっています。",
		location:    "東京都渋谷区",
		lat:         35.6640, lon: 139.6982,
		lookingFor: enums.LookingForWork,
		skills:     []string{"Figma", "UI/UX", "Prototyping"},
		interests:  []string{"デザイン", "カフェ巡り"},
	},
	{
		displayName: "山本 健二",
		bio:         "フルスタックエンジニア。React/Next.jsが得意。オープンソース活動にも興味あり。",
		location:    "神奈川県横浜市",
		lat:         35.4437, lon: 139.6380,
		lookingFor: enums.LookingForBoth,
		skills:     []string{"React", "TypeScript", "PostgreSQL"},
		interests:  []string{"プログラミング", "バスケ"},
	},
	{
		displayName: "伊藤 さくら",
		bio:         "マーケティング × データ分析が専門。スタートアップでグロースハックしてます。",
		location:    "東京都目黒区",
		lat:         35.6415, lon: 139.6983,
		lookingFor: enums.LookingForWork,
		skills:     []string{"マーケティング", "Python", "SQL"},
		interests:  []string{"旅行"},
	},
	{
		displayName: "佐藤 武",
		bio:         "プロダクトマネージャー。元エンジニアでスクラム導入が得意。",
		location:    "東京都港区",
		lat:         35.6581, lon: 139.7514,
		lookingFor: enums.LookingForVolunteer,
		skills:     []string{"プロダクトマネジメント", "Scrum"},
		interests:  []string{"チームビルディング"},
	},
	{
		displayName: "鈴木 美香",
		bio:         "iOSエンジニア3年目。SwiftUIにどっぷり。個人アプリを5本リリース済み。",
		location:    "大阪府大阪市",
		lat:         34.6937, lon: 135.5023,
		lookingFor: enums.LookingForWork,
		skills:     []string{"Swift", "SwiftUI", "Firebase"},
		interests:  []string{"猫"},
	},
	{
		displayName: "渡辺 亮",
		bio:         "バックエンドエンジニア。Goとマイクロサービスが専門。技術ブログ毎週更新中。",
		location:    "福岡県福岡市",
		lat:         33.5902, lon: 130.4017,
		lookingFor: enums.LookingForBoth,
		skills:     []string{"Go", "Kubernetes", "gRPC"},
		interests:  []string{"ブログ"},
	},
	{
		displayName: "中村 恵美",
		bio:         "フリーランスのイラストレーター兼デザイナー。ロゴからキャラクターまで幅広く。",
		location:    "京都府京都市",
		lat:         35.0116, lon: 135.7681,
		lookingFor: enums.LookingForWork,
		skills:     []string{"イラスト", "Photoshop", "Illustrator"},
		interests:  []string{"ブランディング"},
	},
	{
		displayName: "加藤 大輝",
		bio:         "データサイエンティスト。機械学習モデルの開発と運用が得意。",
		location:    "東京都新宿区",
		lat:         35.6938, lon: 139.7034,
		lookingFor: enums.LookingForVolunteer,
		skills:     []string{"Python", "TensorFlow", "BigQuery"},
		interests:  []string{"Kaggle"},
	},
	{
		displayName: "吉田 彩香",
		bio:         "コンテンツマーケター。SEO記事からSNS運用まで。副業でWebライターも。",
		location:    "愛知県名古屋市",
		lat:         35.1815, lon: 136.9066,
		lookingFor: enums.LookingForBoth,
		skills:     []string{"SEO", "ライティング", "WordPress"},
		interests:  []string{"SNS"},
	},
	{
		displayName: "田中 翔太",
		bio:         "フロントエンドエンジニア。Vue.js/Nuxt.jsが得意。アクセシビリティに興味あり。",
		location:    "北海道札幌市",
		lat:         43.0618, lon: 141.3545,
		lookingFor: enums.LookingForWork,
		skills:     []string{"Vue.js", "TypeScript", "Tailwind CSS"},
		interests:  []string{"パフォーマンス最適化"},
	},
}

// SeedDemo fills the store with the demo candidate profiles. The ids
// are generated per process; demo data never needs stable identity.
func (s *Store) SeedDemo(now time.Time) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	for i, seed := range demoProfiles {
		lat := seed.lat
		lon := seed.lon
		created := now.UTC().Add(-time.Duration(i+1) * time.Hour)
		id := uuid.New()
		s.PutProfile(model.Profile{
			ID:          id,
			DisplayName: seed.displayName,
			Bio:         seed.bio,
			Location:    seed.location,
			LocationLat: &lat,
			LocationLon: &lon,
			LookingFor:  seed.lookingFor,
			Skills:      append([]string(nil), seed.skills...),
			Interests:   append([]string(nil), seed.interests...),
			CreatedAt:   created,
			UpdatedAt:   created,
		})

		// Every other demo profile advertises an open slot so the
		// discovery detail view has something to show.
		if i%2 == 0 {
			_, _ = s.InsertSlot(context.Background(), model.AvailabilitySlot{
				ID:       uuid.New(),
				UserID:   id,
				Date:     now.UTC().AddDate(0, 0, i+3),
				TimeSlot: enums.TimeSlotAfternoon,
				Type:     seed.lookingFor,
				Title:    "お手伝いできます",
				Location: enums.SlotLocationBoth,
				Status:   enums.SlotStatusOpen,
			}, created)
		}
	}
}

// EnsureProfile creates a minimal profile for a user id the first time
// it is seen. Demo mode has no registration flow, so the first
// authenticated request provisions the viewer.
func (s *Store) EnsureProfile(id uuid.UUID, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[id]; ok {
		return
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	s.profiles[id] = model.Profile{
		ID:          id,
		DisplayName: "ゲストユーザー",
		LookingFor:  enums.LookingForBoth,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
}
