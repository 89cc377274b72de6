package templates

import "headline-generator/internal/models"

// DefaultTemplates returns the built-in template set, used when no catalog
// file is configured or it fails to load.
func DefaultTemplates() []models.Template {
	return []models.Template{
		// 政治
		{Text: "[人物]宣布[動作]，[結果]引發爭議", Category: "政治"},
		{Text: "[人物][時間][地點][動作]，[機構]表示將[反應]", Category: "政治"},
		{Text: "獨家：[人物]被發現秘密[動作]，[機構]緊急[反應]", Category: "政治"},
		{Text: "[人物]：[數字]%的[人群][觀點]，[結果]需要重視", Category: "政治"},
		{Text: "[機構]發布[政策]，專家：將[結果]", Category: "政治"},
		{Text: "[地點][事件]後，[人物]緊急[動作]，引發[結果]", Category: "政治"},

		// 社會
		{Text: "震驚！[地點][數字]名[人群][動作]，[結果]", Category: "社會"},
		{Text: "[地點]發生[事件]，目擊者：「[描述]」", Category: "社會"},
		{Text: "最新報導：[地點][事件]造成[數字]人[結果]", Category: "社會"},
		{Text: "[地點][機構]公布[數字]項[政策]，專家：[觀點]", Category: "社會"},
		{Text: "調查顯示：[數字]%[地點][人群][觀點]", Category: "社會"},

		// 經濟
		{Text: "[行業]巨頭[公司][動作]，[行業]股價[結果]", Category: "經濟"},
		{Text: "[公司]宣布[數字]億元[動作]，[行業]將迎來[結果]", Category: "經濟"},
		{Text: "突發：[地點][行業]市場[結果]，[機構]緊急[反應]", Category: "經濟"},
		{Text: "[人物]：[時間]內[行業]將迎來[事件]", Category: "經濟"},
		{Text: "分析師預測：[行業][時間]內[結果]，[公司]將[反應]", Category: "經濟"},

		// 科技
		{Text: "[公司]發布革命性[產品]，[行業]專家：將[結果]", Category: "科技"},
		{Text: "突破：[機構]科學家[動作]，有望解決[問題]", Category: "科技"},
		{Text: "[數字]%[行業]專家警告：[事件]將在[時間]內發生", Category: "科技"},
		{Text: "[人物]宣布[產品]將在[時間][動作]，[行業]震動", Category: "科技"},
		{Text: "研究發現：[技術]可能[結果]，[機構]呼籲[反應]", Category: "科技"},

		// 國際
		{Text: "[國家]宣布[動作]，[國家]外交部：將[反應]", Category: "國際"},
		{Text: "[國家][事件]後，[國家]緊急[動作]", Category: "國際"},
		{Text: "[國際組織]：[國家][動作]將導致[結果]", Category: "國際"},
		{Text: "[國家][人物]訪問[國家]，雙方同意[動作]", Category: "國際"},
		{Text: "[國家]發生[事件]，[數字]國表示[反應]", Category: "國際"},

		// 健康
		{Text: "研究：每天[動作]可降低[數字]%[疾病]風險", Category: "健康"},
		{Text: "專家警告：[食物]可能導致[疾病]，建議[反應]", Category: "健康"},
		{Text: "新研究顯示：[習慣]與[疾病]有直接關聯", Category: "健康"},
		{Text: "[機構]發現：[數字]%的[人群]缺乏[營養]，可能導致[結果]", Category: "健康"},
		{Text: "[地點]爆發[疾病]，專家建議民眾[反應]", Category: "健康"},

		// 教育
		{Text: "[機構]最新研究：[教育方式]可提高學生[能力][數字]%", Category: "教育"},
		{Text: "[地點]教育廳宣布：將在[時間]內[動作]", Category: "教育"},
		{Text: "調查：[數字]%的家長認為[教育觀點]", Category: "教育"},
		{Text: "[人物]倡導[教育方式]，專家：將[結果]", Category: "教育"},
		{Text: "[機構]發布[數字]項教育改革措施，學生家長[反應]", Category: "教育"},

		// 娛樂
		{Text: "獨家：[明星]被爆[動作]，經紀公司[反應]", Category: "娛樂"},
		{Text: "[明星]宣布[動作]，粉絲：「[描述]」", Category: "娛樂"},
		{Text: "爆料：[明星]與[明星]疑似[關係]，[時間]後官宣", Category: "娛樂"},
		{Text: "[明星]新[作品]銷量突破[數字]，創造[行業]新紀錄", Category: "娛樂"},
		{Text: "內部消息：[明星]因[原因][動作]，[結果]", Category: "娛樂"},
	}
}
