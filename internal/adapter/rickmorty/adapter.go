package rickmorty

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

// 目录上限（全部已收录角色）
const defaultMaxID = 826

func init() {
	adapter.Register(model.SourceRickAndMorty, NewAdapter)
}

type Adapter struct {
	cfg        *config.SourceConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewAdapter 创建Rick and Morty API适配器
func NewAdapter(cfg *config.SourceConfig, logger *logrus.Logger) interfaces.SourceAdapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// GetSource ========== 实现SourceAdapter接口 ==========
func (a *Adapter) GetSource() model.SourceType {
	return model.SourceRickAndMorty
}

// FetchRandom 在有效ID范围内随机抓取一个角色
func (a *Adapter) FetchRandom(ctx context.Context) (*model.NormalizedCharacter, error) {
	maxID := a.cfg.MaxID
	if maxID <= 0 {
		maxID = defaultMaxID
	}
	id := rand.Intn(maxID) + 1
	a.logger.Debugf("抓取Rick and Morty角色，ID: %d", id)
	return a.FetchByNameOrID(ctx, strconv.Itoa(id))
}

// characterResponse /character/{id}响应，仅解码需要的字段
type characterResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Species string `json:"species"`
	Image   string `json:"image"`
	Origin  struct {
		Name string `json:"name"`
	} `json:"origin"`
}

// FetchByNameOrID 按ID抓取（该API仅支持数字ID寻址）
func (a *Adapter) FetchByNameOrID(ctx context.Context, nameOrID string) (*model.NormalizedCharacter, error) {
	url := fmt.Sprintf("%s/character/%s", a.cfg.BaseURL, nameOrID)

	var data characterResponse
	if err := a.getJSON(ctx, url, &data); err != nil {
		return nil, err
	}
	if data.ID == 0 {
		return nil, &errs.TransientError{Cause: fmt.Errorf("角色数据为空: %s", nameOrID)}
	}

	character := &model.NormalizedCharacter{
		ExternalID:  strconv.Itoa(data.ID),
		Name:        data.Name,
		Source:      model.SourceRickAndMorty,
		ImageURL:    data.Image,
		Description: buildDescription(&data),
	}

	a.logger.Infof("抓取Rick and Morty角色成功: %s", character.Name)
	return character, nil
}

// buildDescription 拼接"Species - Status from Origin"形式的描述
// 缺失的部分直接跳过，origin为unknown时不展示
func buildDescription(data *characterResponse) string {
	var b strings.Builder

	if data.Species != "" {
		b.WriteString(data.Species)
	}
	if data.Status != "" {
		if b.Len() > 0 {
			b.WriteString(" - ")
		}
		b.WriteString(data.Status)
	}
	origin := data.Origin.Name
	if origin != "" && !strings.EqualFold(origin, "unknown") {
		if b.Len() > 0 {
			b.WriteString(" from ")
		}
		b.WriteString(origin)
	}

	return b.String()
}

// getJSON 发起GET请求并解码JSON，传输层失败与非2xx状态均视为瞬时错误
func (a *Adapter) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return &errs.TransientError{Cause: fmt.Errorf("请求Rick and Morty API失败: %w", err)}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			a.logger.Errorf("关闭Rick and Morty响应体失败: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return &errs.TransientError{Cause: fmt.Errorf("Rick and Morty API返回状态码%d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &errs.TransientError{Cause: fmt.Errorf("解析Rick and Morty响应失败: %w", err)}
	}
	return nil
}
