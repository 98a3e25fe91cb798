package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"

	"PikaMatch/internal/adapter"
	"PikaMatch/internal/config"
	"PikaMatch/internal/errs"
	"PikaMatch/internal/interfaces"
	"PikaMatch/internal/model"
	"PikaMatch/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// PokeAPI官方正式环境前缀，species.url返回的是完整链接
const officialBasePrefix = "https://pokeapi.co/api/v2"

// 默认目录上限（第1~8世代）
const defaultMaxID = 898

func init() {
	adapter.Register(model.SourcePokemon, NewAdapter)
}

type Adapter struct {
	cfg        *config.SourceConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewAdapter 创建PokeAPI适配器
func NewAdapter(cfg *config.SourceConfig, logger *logrus.Logger) interfaces.SourceAdapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// GetSource ========== 实现SourceAdapter接口 ==========
func (a *Adapter) GetSource() model.SourceType {
	return model.SourcePokemon
}

// FetchRandom 在有效ID范围内随机抓取一只宝可梦
func (a *Adapter) FetchRandom(ctx context.Context) (*model.NormalizedCharacter, error) {
	maxID := a.cfg.MaxID
	if maxID <= 0 {
		maxID = defaultMaxID
	}
	id := rand.Intn(maxID) + 1
	a.logger.Debugf("抓取宝可梦，ID: %d", id)
	return a.FetchByNameOrID(ctx, strconv.Itoa(id))
}

// pokemonResponse /pokemon/{id}响应，仅解码需要的字段
// 可选子结构缺失时解码为零值，不视为失败
type pokemonResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Sprites struct {
		Other struct {
			OfficialArtwork struct {
				FrontDefault string `json:"front_default"`
			} `json:"official-artwork"`
		} `json:"other"`
	} `json:"sprites"`
	Species struct {
		URL string `json:"url"`
	} `json:"species"`
}

// speciesResponse /pokemon-species/{id}响应，用于提取英文描述
type speciesResponse struct {
	FlavorTextEntries []struct {
		FlavorText string `json:"flavor_text"`
		Language   struct {
			Name string `json:"name"`
		} `json:"language"`
	} `json:"flavor_text_entries"`
}

// FetchByNameOrID 按名称或ID抓取。描述需要二次请求species接口，
// 二次请求失败只降级为空描述，不影响整次抓取
func (a *Adapter) FetchByNameOrID(ctx context.Context, nameOrID string) (*model.NormalizedCharacter, error) {
	url := fmt.Sprintf("%s/pokemon/%s", a.cfg.BaseURL, strings.ToLower(nameOrID))

	var data pokemonResponse
	if err := a.getJSON(ctx, url, &data); err != nil {
		return nil, err
	}
	if data.ID == 0 {
		return nil, &errs.TransientError{Cause: fmt.Errorf("宝可梦数据为空: %s", nameOrID)}
	}

	character := &model.NormalizedCharacter{
		ExternalID:  strconv.Itoa(data.ID),
		Name:        capitalize(data.Name),
		Source:      model.SourcePokemon,
		ImageURL:    data.Sprites.Other.OfficialArtwork.FrontDefault,
		Description: a.fetchDescription(ctx, data.Species.URL),
	}

	a.logger.Infof("抓取宝可梦成功: %s", character.Name)
	return character, nil
}

// fetchDescription 通过species接口获取英文描述，失败时返回空串
func (a *Adapter) fetchDescription(ctx context.Context, speciesURL string) string {
	if speciesURL == "" {
		return ""
	}

	// species.url为官方完整链接，替换为配置的基础地址以便代理/测试
	target := speciesURL
	if path := strings.TrimPrefix(speciesURL, officialBasePrefix); path != speciesURL {
		target = a.cfg.BaseURL + path
	}

	var species speciesResponse
	if err := a.getJSON(ctx, target, &species); err != nil {
		a.logger.Warnf("获取宝可梦描述失败，降级为空: %v", err)
		return ""
	}

	for _, entry := range species.FlavorTextEntries {
		if entry.Language.Name == "en" && entry.FlavorText != "" {
			// 压缩原文中的换行与多余空白
			return strings.Join(strings.Fields(entry.FlavorText), " ")
		}
	}
	return ""
}

// getJSON 发起GET请求并解码JSON，传输层失败与非2xx状态均视为瞬时错误
func (a *Adapter) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return &errs.TransientError{Cause: fmt.Errorf("请求PokeAPI失败: %w", err)}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			a.logger.Errorf("关闭PokeAPI响应体失败: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return &errs.TransientError{Cause: fmt.Errorf("PokeAPI返回状态码%d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &errs.TransientError{Cause: fmt.Errorf("解析PokeAPI响应失败: %w", err)}
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
