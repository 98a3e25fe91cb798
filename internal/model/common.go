package model

// SourceType 角色来源平台枚举
type SourceType string

const (
	SourcePokemon      SourceType = "pokemon"
	SourceRickAndMorty SourceType = "rickandmorty"
	SourceSuperHero    SourceType = "superhero"
)

// Valid 判断来源是否为已支持的平台
func (s SourceType) Valid() bool {
	switch s {
	case SourcePokemon, SourceRickAndMorty, SourceSuperHero:
		return true
	}
	return false
}

// AllSources 返回全部已支持的来源（固定顺序，调用方需自行洗牌）
func AllSources() []SourceType {
	return []SourceType{SourcePokemon, SourceRickAndMorty, SourceSuperHero}
}

// VoteType 投票类型枚举
type VoteType string

const (
	VoteLike    VoteType = "like"
	VoteDislike VoteType = "dislike"
)

// Valid 判断投票类型是否合法
func (v VoteType) Valid() bool {
	return v == VoteLike || v == VoteDislike
}

// 缺失字段的兜底默认值
const (
	DefaultName        = "Unknown"
	DefaultImageURL    = "https://via.placeholder.com/300x300?text=No+Image"
	DefaultDescription = "No description available"
)

// NormalizedCharacter 统一的角色模型（抹平各来源API的响应差异）
// 随机获取的角色仅作展示，不落库
type NormalizedCharacter struct {
	ExternalID  string     `json:"externalId"`
	Name        string     `json:"name"`
	Source      SourceType `json:"source"`
	ImageURL    string     `json:"imageUrl"`
	Description string     `json:"description"`
}

// ApplyDefaults 为缺失字段填充默认值
func (c *NormalizedCharacter) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.ImageURL == "" {
		c.ImageURL = DefaultImageURL
	}
	if c.Description == "" {
		c.Description = DefaultDescription
	}
}
