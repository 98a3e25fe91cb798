package superhero

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

// 目录上限（SuperHero API全量英雄数）
const defaultMaxID = 731

// API对占位字段的惯用填充值
const placeholderValue = "-"

func init() {
	adapter.Register(model.SourceSuperHero, NewAdapter)
}

type Adapter struct {
	cfg        *config.SourceConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewAdapter 创建SuperHero API适配器
func NewAdapter(cfg *config.SourceConfig, logger *logrus.Logger) interfaces.SourceAdapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// GetSource ========== 实现SourceAdapter接口 ==========
func (a *Adapter) GetSource() model.SourceType {
	return model.SourceSuperHero
}

// FetchRandom 在有效ID范围内随机抓取一个英雄
func (a *Adapter) FetchRandom(ctx context.Context) (*model.NormalizedCharacter, error) {
	maxID := a.cfg.MaxID
	if maxID <= 0 {
		maxID = defaultMaxID
	}
	id := rand.Intn(maxID) + 1
	a.logger.Debugf("抓取超级英雄，ID: %d", id)
	return a.FetchByNameOrID(ctx, strconv.Itoa(id))
}

// superheroResponse /{id}响应，仅解码需要的字段
// 该API用HTTP 200承载业务错误，response字段为"error"时视为调用失败
type superheroResponse struct {
	Response  string `json:"response"`
	Error     string `json:"error"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Biography struct {
		FullName string `json:"full-name"`
	} `json:"biography"`
	Work struct {
		Occupation string `json:"occupation"`
	} `json:"work"`
	Image struct {
		URL string `json:"url"`
	} `json:"image"`
}

// FetchByNameOrID 按ID抓取英雄（认证Key拼接在路径中）
func (a *Adapter) FetchByNameOrID(ctx context.Context, nameOrID string) (*model.NormalizedCharacter, error) {
	url := a.cfg.BaseURL
	if a.cfg.APIKey != "" {
		url += "/" + a.cfg.APIKey
	}
	url += "/" + nameOrID

	var data superheroResponse
	if err := a.getJSON(ctx, url, &data); err != nil {
		return nil, err
	}
	if data.Response == "error" {
		return nil, &errs.TransientError{Cause: fmt.Errorf("SuperHero API返回业务错误: %s", data.Error)}
	}

	externalID := data.ID
	if externalID == "" {
		externalID = nameOrID
	}

	character := &model.NormalizedCharacter{
		ExternalID:  externalID,
		Name:        data.Name,
		Source:      model.SourceSuperHero,
		ImageURL:    data.Image.URL,
		Description: buildDescription(&data),
	}

	a.logger.Infof("抓取超级英雄成功: %s", character.Name)
	return character, nil
}

// buildDescription 拼接"本名 - 职业"形式的描述，"-"为API的空占位，跳过
func buildDescription(data *superheroResponse) string {
	var b strings.Builder

	fullName := data.Biography.FullName
	if fullName != "" && fullName != placeholderValue {
		b.WriteString(fullName)
	}
	occupation := data.Work.Occupation
	if occupation != "" && occupation != placeholderValue {
		if b.Len() > 0 {
			b.WriteString(" - ")
		}
		b.WriteString(occupation)
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
		return &errs.TransientError{Cause: fmt.Errorf("请求SuperHero API失败: %w", err)}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			a.logger.Errorf("关闭SuperHero响应体失败: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return &errs.TransientError{Cause: fmt.Errorf("SuperHero API返回状态码%d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &errs.TransientError{Cause: fmt.Errorf("解析SuperHero响应失败: %w", err)}
	}
	return nil
}
