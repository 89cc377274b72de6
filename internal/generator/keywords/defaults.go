package keywords

import "headline-generator/internal/models"

// DefaultCategories covers every placeholder used by the built-in templates.
func DefaultCategories() []models.KeywordCategory {
	return []models.KeywordCategory{
		{Name: "人物", Words: []string{"政府高官", "知名企業家", "國際明星", "資深記者", "著名科學家", "反對派領導人", "神秘富豪", "退休將軍"}},
		{Name: "動作", Words: []string{"簽署秘密協議", "洩露機密文件", "捐贈巨額資金", "突然辭職", "私下會晤", "公開批評", "隱瞞真相", "秘密調查"}},
		{Name: "結果", Words: []string{"引發全國關注", "導致股市崩盤", "激起民眾抗議", "促使政府干預", "引起國際譴責", "造成嚴重後果", "震驚政界"}},
		{Name: "時間", Words: []string{"今日凌晨", "昨日深夜", "本週末", "三個月", "明年初", "未來五年"}},
		{Name: "地點", Words: []string{"台北", "高雄", "台中", "花蓮", "新竹科學園區", "偏鄉小鎮"}},
		{Name: "機構", Words: []string{"衛生部", "中央銀行", "國家實驗室", "立法院", "消費者保護協會", "頂尖大學"}},
		{Name: "反應", Words: []string{"展開調查", "發表聲明", "召開記者會", "否認指控", "暫停相關業務", "保持觀望"}},
		{Name: "數字", Words: []string{"3", "12", "47", "85", "100", "1000"}},
		{Name: "人群", Words: []string{"上班族", "退休人士", "大學生", "年輕家長", "中小企業主", "網友"}},
		{Name: "觀點", Words: []string{"支持新政策", "對未來感到悲觀", "認為物價過高", "反對增稅", "希望加強監管"}},
		{Name: "政策", Words: []string{"減稅方案", "能源補貼", "住房新政", "數位身分證計畫", "最低工資調整"}},
		{Name: "事件", Words: []string{"重大停電", "資料外洩", "金融風暴", "大規模罷工", "地震", "網路癱瘓"}},
		{Name: "描述", Words: []string{"簡直難以置信", "從沒見過這種場面", "大家都嚇壞了", "一切發生得太快", "現場一片混亂"}},
		{Name: "行業", Words: []string{"半導體", "電動車", "房地產", "航空", "零售", "生技"}},
		{Name: "公司", Words: []string{"某科技巨頭", "老牌電子廠", "新創獨角獸", "跨國車廠", "本土銀行"}},
		{Name: "產品", Words: []string{"智慧眼鏡", "折疊手機", "家用機器人", "量子晶片", "無人機"}},
		{Name: "問題", Words: []string{"能源短缺", "交通壅塞", "人口老化", "水資源危機", "空氣污染"}},
		{Name: "技術", Words: []string{"人工智慧", "基因編輯", "區塊鏈", "5G網路", "腦機介面"}},
		{Name: "國家", Words: []string{"美國", "日本", "德國", "巴西", "印度", "澳洲"}},
		{Name: "國際組織", Words: []string{"聯合國", "世界衛生組織", "世界貿易組織", "國際貨幣基金", "歐盟"}},
		{Name: "疾病", Words: []string{"心臟病", "糖尿病", "失眠", "流感", "高血壓"}},
		{Name: "食物", Words: []string{"隔夜飯", "含糖飲料", "加工肉品", "泡麵", "咖啡"}},
		{Name: "習慣", Words: []string{"熬夜", "久坐", "滑手機", "不吃早餐", "每天散步"}},
		{Name: "營養", Words: []string{"維生素D", "鐵質", "鈣質", "膳食纖維", "蛋白質"}},
		{Name: "教育方式", Words: []string{"翻轉教室", "戶外教學", "遊戲化學習", "雙語教學", "線上課程"}},
		{Name: "能力", Words: []string{"專注力", "創造力", "閱讀能力", "邏輯思考", "表達能力"}},
		{Name: "教育觀點", Words: []string{"功課太多", "考試制度需要改革", "孩子應該多運動", "補習班不可或缺"}},
		{Name: "明星", Words: []string{"天后歌手", "偶像男團成員", "影帝", "網紅主播", "資深綜藝主持人"}},
		{Name: "關係", Words: []string{"秘密交往", "合組公司", "反目成仇", "低調結婚"}},
		{Name: "作品", Words: []string{"專輯", "電影", "單曲", "寫真集", "自傳"}},
		{Name: "原因", Words: []string{"健康因素", "合約糾紛", "家庭變故", "網路爭議", "個人規劃"}},
	}
}
